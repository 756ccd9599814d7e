package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
)

// DefaultLoginTimeout bounds the call to the auth service
const DefaultLoginTimeout = 30 * time.Second

// Authenticator runs the wallet login flow: sign the challenge, exchange the
// signature for a token, persist the session and invalidate cached data.
type Authenticator struct {
	wallet   ports.WalletProvider
	api      ports.AuthAPI
	sessions ports.SessionStore
	cache    ports.DataCache
	eventPub ports.EventPublisher
	logger   *slog.Logger

	loginTimeout time.Duration
	now          func() time.Time

	attempts atomic.Uint64
	mu       sync.Mutex
	// committed is the lowest attempt still allowed to store a session
	committed uint64
}

// Option configures an Authenticator
type Option func(*Authenticator)

// WithLoginTimeout sets the timeout applied to the auth service call
func WithLoginTimeout(d time.Duration) Option {
	return func(a *Authenticator) {
		if d > 0 {
			a.loginTimeout = d
		}
	}
}

// WithEventPublisher publishes login and logout events through pub
func WithEventPublisher(pub ports.EventPublisher) Option {
	return func(a *Authenticator) { a.eventPub = pub }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(a *Authenticator) { a.logger = logger }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

// NewAuthenticator creates a new wallet authenticator
func NewAuthenticator(
	wallet ports.WalletProvider,
	api ports.AuthAPI,
	sessions ports.SessionStore,
	cache ports.DataCache,
	opts ...Option,
) *Authenticator {
	a := &Authenticator{
		wallet:       wallet,
		api:          api,
		sessions:     sessions,
		cache:        cache,
		logger:       slog.Default(),
		loginTimeout: DefaultLoginTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Login asks the wallet for its current account and authenticates it
func (a *Authenticator) Login(ctx context.Context) (*core.Session, error) {
	account, err := a.wallet.Account(ctx)
	if err != nil {
		return nil, walletFailure("failed to get wallet account", err)
	}
	return a.Authenticate(ctx, account)
}

// Authenticate logs account in. Every failure is returned as a *core.AuthError
// and leaves the session store untouched.
func (a *Authenticator) Authenticate(ctx context.Context, account core.Account) (*core.Session, error) {
	if account.IsZero() {
		return nil, core.NewAuthError(core.WalletError, "no wallet account available", nil)
	}

	attempt := a.attempts.Add(1)
	logger := a.logger.With("address", account.Address, "attempt", attempt)

	// The wallet may wait on the user indefinitely, no timeout here
	signed, err := a.wallet.Sign(ctx, core.ChallengeMessage(account.Address), account)
	if err != nil {
		authErr := walletFailure("failed to sign challenge", err)
		logger.Info("Wallet signature failed", "kind", authErr.Kind, "error", err)
		return nil, authErr
	}

	payload, err := a.submit(ctx, core.LoginRequest{
		Signature:   signed.Signature,
		Address:     account.Address,
		MessageHash: signed.MessageHash,
	})
	if err != nil {
		logger.Warn("Login request failed", "kind", core.KindOf(err), "error", err)
		return nil, err
	}

	now := a.now()
	session := &core.Session{
		ID:        uuid.New().String(),
		Address:   account.Address,
		Token:     payload.Token,
		User:      payload.User,
		CreatedAt: now,
		ExpiresAt: tokenExpiry(payload.Token),
	}

	if err := a.commit(ctx, attempt, session); err != nil {
		logger.Error("Failed to persist session", "error", err)
		return nil, err
	}

	logger.Info("Logged in", "session_id", session.ID, "user_id", session.User.ID)
	return session, nil
}

// submit sends the login request under the login timeout and classifies failures
func (a *Authenticator) submit(ctx context.Context, req core.LoginRequest) (*core.LoginPayload, error) {
	loginCtx, cancel := context.WithTimeout(ctx, a.loginTimeout)
	defer cancel()

	payload, err := a.api.EthLogin(loginCtx, req)
	if err != nil {
		var authErr *core.AuthError
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, core.NewAuthError(core.NetworkError, "login request timed out", err)
		case errors.As(err, &authErr):
			return nil, authErr
		default:
			return nil, core.NewAuthError(core.NetworkError, "login request failed", err)
		}
	}
	if payload == nil || payload.Token == "" {
		return nil, core.NewAuthError(core.NetworkError, "auth service returned no token", nil)
	}
	return payload, nil
}

// commit stores session unless a newer attempt already committed, then resets the cache
func (a *Authenticator) commit(ctx context.Context, attempt uint64, session *core.Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if attempt < a.committed {
		a.logger.Info("Login superseded by a newer attempt or logout",
			"attempt", attempt, "committed", a.committed, "session_id", session.ID)
		return nil
	}

	previous, err := a.sessions.Session(ctx)
	if err != nil && !errors.Is(err, core.ErrNoSession) {
		a.logger.Warn("Failed to read previous session", "error", err)
	}

	if err := a.sessions.SetSession(ctx, session); err != nil {
		return core.NewAuthError(core.SessionError, "failed to store session", err)
	}

	if err := a.cache.Reset(ctx); err != nil {
		// Cached data still belongs to the previous identity, undo the login
		a.restore(ctx, previous)
		return core.NewAuthError(core.SessionError, "failed to reset data cache", err)
	}
	a.committed = attempt

	if a.eventPub != nil {
		if err := a.eventPub.PublishLogin(ctx, session); err != nil {
			a.logger.Warn("Failed to publish login event", "error", err)
		}
	}
	return nil
}

// restore puts back the session that was stored before a failed commit
func (a *Authenticator) restore(ctx context.Context, previous *core.Session) {
	if previous != nil {
		err := a.sessions.SetSession(ctx, previous)
		if err == nil {
			return
		}
		a.logger.Warn("Failed to restore previous session", "session_id", previous.ID, "error", err)
	}
	if err := a.sessions.Clear(ctx); err != nil {
		a.logger.Error("Failed to roll back session", "error", err)
	}
}

// CurrentSession returns the stored session or core.ErrNoSession
func (a *Authenticator) CurrentSession(ctx context.Context) (*core.Session, error) {
	session, err := a.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}
	if session.Expired(a.now()) {
		return nil, core.ErrTokenExpired
	}
	return session, nil
}

// Logout clears the stored session and the data cache
func (a *Authenticator) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	session, err := a.sessions.Session(ctx)
	if err != nil && !errors.Is(err, core.ErrNoSession) {
		return fmt.Errorf("failed to read session: %w", err)
	}

	// Logins still in flight must not bring a session back
	a.committed = a.attempts.Load() + 1

	if err := a.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if err := a.cache.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset data cache: %w", err)
	}

	if session == nil {
		return nil
	}

	// The token is already gone locally, a lost event is not fatal
	if a.eventPub != nil {
		if err := a.eventPub.PublishLogout(ctx, session.Address, session.ID); err != nil {
			a.logger.Warn("Failed to publish logout event", "error", err)
		}
	}

	a.logger.Info("Logged out", "session_id", session.ID)
	return nil
}

// walletFailure keeps a classified wallet error and maps the rest to WalletError
func walletFailure(message string, err error) *core.AuthError {
	var authErr *core.AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	return core.NewAuthError(core.WalletError, message, err)
}

// tokenExpiry reads the exp claim of a JWT without verifying it.
// The auth service verifies its own tokens, the client only needs the expiry.
func tokenExpiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
