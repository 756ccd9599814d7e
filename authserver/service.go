// Package authserver is a development auth backend: it verifies wallet
// signatures over the login challenge and issues session tokens.
package authserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/internal/eth"
	"github.com/shopspring/decimal"
)

var ErrSignatureRejected = errors.New("invalid signature")

// Service handles authentication business logic
type Service struct {
	tokenizer *Tokenizer
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	users    map[common.Address]*core.User
	projects map[string]core.Project
	mentions []mention
}

// NewService creates a new authentication service
func NewService(tokenizer *Tokenizer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tokenizer: tokenizer,
		logger:    logger,
		now:       time.Now,
		users:     make(map[common.Address]*core.User),
		projects:  make(map[string]core.Project),
	}
}

// EthLogin verifies the signed challenge and returns a session token for the
// address's user, creating the user on first login
func (s *Service) EthLogin(ctx context.Context, req core.LoginRequest) (*core.LoginPayload, error) {
	if !common.IsHexAddress(req.Address) {
		return nil, core.ErrInvalidAddress
	}

	// The hash must be of our challenge, not of some other message the key signed
	if !strings.EqualFold(req.MessageHash, core.ChallengeHash(req.Address)) {
		return nil, core.ErrInvalidChallenge
	}

	if err := eth.VerifyText(req.MessageHash, req.Signature, req.Address); err != nil {
		s.logger.Info("Rejected login signature", "address", req.Address, "error", err)
		return nil, ErrSignatureRejected
	}

	user := s.userFor(common.HexToAddress(req.Address))

	token, err := s.tokenizer.Issue(&user, user.EthAccounts[0].Address, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	s.logger.Info("Issued session token", "address", req.Address, "user_id", user.ID)
	return &core.LoginPayload{Token: token, User: user}, nil
}

// Authenticate returns the user a session token was issued to
func (s *Service) Authenticate(ctx context.Context, token string) (*core.User, error) {
	claims, err := s.tokenizer.Verify(token)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[common.HexToAddress(claims.Address)]
	if !ok || user.ID != claims.Subject {
		return nil, core.ErrInvalidToken
	}
	u := copyUser(user)
	return &u, nil
}

// Project returns a project from the catalog
func (s *Service) Project(ctx context.Context, id string) (*core.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[id]
	if !ok {
		return nil, core.ErrProjectNotFound
	}
	return &project, nil
}

// AddProject adds or replaces a project in the catalog
func (s *Service) AddProject(project core.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects[project.ID] = project
}

// SetBalance records the SAN balance of address, creating its user if needed
func (s *Service) SetBalance(address string, balance decimal.Decimal) error {
	if !common.IsHexAddress(address) {
		return core.ErrInvalidAddress
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findOrCreateUserLocked(common.HexToAddress(address))
	for i := range user.EthAccounts {
		if common.HexToAddress(user.EthAccounts[i].Address) == common.HexToAddress(address) {
			user.EthAccounts[i].SanBalance = balance
		}
	}
	return nil
}

// Users returns a snapshot of all known users ordered by ID
func (s *Service) Users() []core.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]core.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// userFor returns a copy of the address's user, creating it on first sight
func (s *Service) userFor(address common.Address) core.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return copyUser(s.findOrCreateUserLocked(address))
}

func (s *Service) findOrCreateUserLocked(address common.Address) *core.User {
	if user, ok := s.users[address]; ok {
		return user
	}

	user := &core.User{
		ID: uuid.New().String(),
		EthAccounts: []core.EthAccount{
			{Address: address.Hex(), SanBalance: decimal.Zero},
		},
	}
	s.users[address] = user
	return user
}

func copyUser(u *core.User) core.User {
	c := *u
	c.EthAccounts = append([]core.EthAccount(nil), u.EthAccounts...)
	return c
}
