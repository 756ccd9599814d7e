package core

import (
	"errors"
	"fmt"
)

var (
	ErrNoSession        = errors.New("no active session")
	ErrTokenExpired     = errors.New("token has expired")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidAddress   = errors.New("invalid ethereum address")
	ErrProjectNotFound  = errors.New("project not found")
	ErrCacheMiss        = errors.New("cache miss")
	ErrInvalidChallenge = errors.New("invalid challenge")
	ErrEmptySearch      = errors.New("search text cannot be empty")
)

// ErrorKind classifies a failed login attempt
type ErrorKind int

const (
	// UserDenied means the user rejected the signature request in the wallet
	UserDenied ErrorKind = iota + 1
	// WalletError means the wallet is absent, has no account or failed for another reason
	WalletError
	// NetworkError covers transport failures, timeouts and server errors
	NetworkError
	// InvalidSignature means the auth service rejected the signed challenge
	InvalidSignature
	// SessionError means the accepted session could not be persisted
	SessionError
)

func (k ErrorKind) String() string {
	switch k {
	case UserDenied:
		return "user_denied"
	case WalletError:
		return "wallet_error"
	case NetworkError:
		return "network_error"
	case InvalidSignature:
		return "invalid_signature"
	case SessionError:
		return "session_error"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Kind sentinels, usable with errors.Is
var (
	ErrUserDenied       = &AuthError{Kind: UserDenied}
	ErrWallet           = &AuthError{Kind: WalletError}
	ErrNetwork          = &AuthError{Kind: NetworkError}
	ErrInvalidSignature = &AuthError{Kind: InvalidSignature}
	ErrSession          = &AuthError{Kind: SessionError}
)

// AuthError is the single error a failed login attempt produces
type AuthError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewAuthError creates an AuthError of the given kind wrapping err
func NewAuthError(kind ErrorKind, message string, err error) *AuthError {
	return &AuthError{Kind: kind, Message: message, Err: err}
}

func (e *AuthError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches any AuthError of the same kind
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first AuthError in err's chain, or 0
func KindOf(err error) ErrorKind {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return 0
}
