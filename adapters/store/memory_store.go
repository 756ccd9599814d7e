package store

import (
	"context"
	"sync"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
)

// MemoryStore is an in-memory implementation of the SessionStore interface
type MemoryStore struct {
	session *core.Session
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore() ports.SessionStore {
	return &MemoryStore{}
}

// Session returns a copy of the stored session
func (s *MemoryStore) Session(ctx context.Context) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return nil, core.ErrNoSession
	}
	return copySession(s.session), nil
}

// SetSession replaces the stored session
func (s *MemoryStore) SetSession(ctx context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = copySession(session)
	return nil
}

// Clear removes the stored session
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	return nil
}

func copySession(s *core.Session) *core.Session {
	c := *s
	c.User.EthAccounts = append([]core.EthAccount(nil), s.User.EthAccounts...)
	return &c
}
