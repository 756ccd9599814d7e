package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
)

// DefaultQueryTTL is how long a query result stays cached
const DefaultQueryTTL = 5 * time.Minute

// DataReader runs dashboard queries as the current session's user,
// serving repeated reads from the data cache.
type DataReader struct {
	api      ports.QueryAPI
	sessions ports.SessionStore
	cache    ports.DataCache
	ttl      time.Duration
	logger   *slog.Logger
}

// NewDataReader creates a new data reader
func NewDataReader(api ports.QueryAPI, sessions ports.SessionStore, cache ports.DataCache, logger *slog.Logger) *DataReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataReader{
		api:      api,
		sessions: sessions,
		cache:    cache,
		ttl:      DefaultQueryTTL,
		logger:   logger,
	}
}

// Project returns the project with the given id. Anonymous reads are allowed.
func (r *DataReader) Project(ctx context.Context, id string) (*core.Project, error) {
	return cachedRead(ctx, r, "project:"+id, func(ctx context.Context, token string) (*core.Project, error) {
		project, err := r.api.Project(ctx, token, id)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch project %s: %w", id, err)
		}
		return project, nil
	})
}

// TopicSearch returns mention counts of q.SearchText per source
func (r *DataReader) TopicSearch(ctx context.Context, q core.TopicQuery) (*core.TopicSearch, error) {
	if strings.TrimSpace(q.SearchText) == "" {
		return nil, core.ErrEmptySearch
	}
	if q.To.IsZero() {
		q.To = time.Now().UTC().Truncate(time.Hour)
	}
	if q.From.IsZero() {
		q.From = q.To.Add(-core.DefaultTopicWindow)
	}
	if q.Interval == "" {
		q.Interval = core.DefaultTopicInterval
	}

	key := fmt.Sprintf("topics:%s:%d:%d:%s", q.SearchText, q.From.Unix(), q.To.Unix(), q.Interval)
	return cachedRead(ctx, r, key, func(ctx context.Context, token string) (*core.TopicSearch, error) {
		result, err := r.api.TopicSearch(ctx, token, q)
		if err != nil {
			return nil, fmt.Errorf("failed to search topic %q: %w", q.SearchText, err)
		}
		return result, nil
	})
}

// cachedRead serves key from the cache or fetches it with the current token
func cachedRead[T any](ctx context.Context, r *DataReader, key string, fetch func(context.Context, string) (*T, error)) (*T, error) {
	cached, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var value T
		if err := json.Unmarshal(cached, &value); err == nil {
			return &value, nil
		}
		r.logger.Warn("Dropping undecodable cache entry", "key", key)
	case !errors.Is(err, core.ErrCacheMiss):
		r.logger.Warn("Cache read failed", "key", key, "error", err)
	}

	token, err := r.token(ctx)
	if err != nil {
		return nil, err
	}

	value, err := fetch(ctx, token)
	if err != nil {
		return nil, err
	}

	// A login or logout during the fetch reset the cache, do not refill it
	// with data read as the previous identity
	if current, err := r.token(ctx); err != nil || current != token {
		r.logger.Debug("Identity changed during fetch, not caching", "key", key)
		return value, nil
	}

	if data, err := json.Marshal(value); err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
			r.logger.Warn("Cache write failed", "key", key, "error", err)
		}
	}
	return value, nil
}

// token returns the current session token, empty when nobody is logged in
func (r *DataReader) token(ctx context.Context) (string, error) {
	session, err := r.sessions.Session(ctx)
	switch {
	case err == nil:
		return session.Token, nil
	case errors.Is(err, core.ErrNoSession):
		return "", nil
	default:
		return "", fmt.Errorf("failed to read session: %w", err)
	}
}
