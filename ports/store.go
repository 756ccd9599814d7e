package ports

import (
	"context"
	"time"

	"github.com/layer-3/walletauth/core"
)

// SessionStore holds the current session.
// Session returns core.ErrNoSession when nothing is stored.
type SessionStore interface {
	Session(ctx context.Context) (*core.Session, error)
	SetSession(ctx context.Context, session *core.Session) error
	Clear(ctx context.Context) error
}

// DataCache caches query results for the current identity.
// Get returns core.ErrCacheMiss for unknown keys.
type DataCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Reset(ctx context.Context) error
}
