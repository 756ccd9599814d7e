package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// EthAccount is an Ethereum account linked to a user
type EthAccount struct {
	Address    string          `json:"address"`
	SanBalance decimal.Decimal `json:"sanBalance"`
}

// User is the authenticated identity returned by the auth service
type User struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	Username    string       `json:"username"`
	EthAccounts []EthAccount `json:"ethAccounts"`
}

// LoginRequest is submitted to the auth service after the wallet signed the challenge
type LoginRequest struct {
	Signature   string `json:"signature"`
	Address     string `json:"address"`
	MessageHash string `json:"messageHash"`
}

// LoginPayload is the auth service's answer to an accepted login
type LoginPayload struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Session represents an authenticated user session
type Session struct {
	ID        string    `json:"id"`         // Unique per successful login
	Address   string    `json:"address"`    // Wallet address that signed the challenge
	Token     string    `json:"token"`      // Token issued by the auth service
	User      User      `json:"user"`       // Identity the token belongs to
	CreatedAt time.Time `json:"created_at"` // When the session was created
	ExpiresAt time.Time `json:"expires_at"` // Zero when the token carries no expiry
}

// Expired reports whether the session token has a known expiry in the past
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
