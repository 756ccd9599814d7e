package ports

import (
	"context"

	"github.com/layer-3/walletauth/core"
)

// WalletProvider supplies the user's account and signs messages on their behalf.
// Sign may block until the user approves or rejects the request.
type WalletProvider interface {
	Account(ctx context.Context) (core.Account, error)
	Sign(ctx context.Context, message string, account core.Account) (core.SignedChallenge, error)
}
