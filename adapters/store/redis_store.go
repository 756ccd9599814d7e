package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the SessionStore interface.
// Sessions are keyed by profile so several clients can share one Redis.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a new Redis session store for the given profile
func NewRedisStore(client *redis.Client, profile string) ports.SessionStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{
		client: client,
		key:    "walletauth:session:" + profile,
	}
}

// Session loads the stored session
func (s *RedisStore) Session(ctx context.Context) (*core.Session, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrNoSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session core.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// SetSession stores the session, expiring it with its token when the expiry is known
func (s *RedisStore) SetSession(ctx context.Context, session *core.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	var ttl time.Duration
	if !session.ExpiresAt.IsZero() {
		ttl = time.Until(session.ExpiresAt)
		if ttl <= 0 {
			return core.ErrTokenExpired
		}
	}

	if err := s.client.Set(ctx, s.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Clear deletes the stored session
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
