package authserver

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/layer-3/walletauth/core"
)

// AudienceSession is the audience of issued session tokens
const AudienceSession = "session:access"

// SessionClaims combines standard claims with the wallet address that logged in
type SessionClaims struct {
	jwt.RegisteredClaims
	Address string `json:"addr"`
}

// Tokenizer issues and verifies ES256 session tokens
type Tokenizer struct {
	signKey *ecdsa.PrivateKey
	ttl     time.Duration
}

// NewTokenizer creates a new JWT tokenizer
func NewTokenizer(signKey *ecdsa.PrivateKey, ttl time.Duration) *Tokenizer {
	return &Tokenizer{signKey: signKey, ttl: ttl}
}

// Issue creates a session token for user logged in with address
func (t *Tokenizer) Issue(user *core.User, address string, now time.Time) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Audience:  jwt.ClaimStrings{AudienceSession},
		},
		Address: address,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signedToken, err := token.SignedString(t.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signedToken, nil
}

// Verify parses and validates a session token
func (t *Tokenizer) Verify(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &t.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceSession))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, core.ErrInvalidToken
	}
	return claims, nil
}
