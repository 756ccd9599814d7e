package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/internal/eth"
)

// Approver asks the user whether message may be signed for account
type Approver func(ctx context.Context, message string, account core.Account) (bool, error)

// KeyWallet is a WalletProvider holding a single local private key
type KeyWallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
	approve Approver
}

// KeyOption configures a KeyWallet
type KeyOption func(*KeyWallet)

// WithApprover requires approval before every signature
func WithApprover(approve Approver) KeyOption {
	return func(w *KeyWallet) { w.approve = approve }
}

// NewKeyWallet creates a wallet signing with key
func NewKeyWallet(key *ecdsa.PrivateKey, opts ...KeyOption) *KeyWallet {
	w := &KeyWallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// OpenKeystore creates a wallet from a geth keystore file
func OpenKeystore(path, passphrase string, opts ...KeyOption) (*KeyWallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore: %w", err)
	}
	key, err := eth.DecryptKeystore(data, passphrase)
	if err != nil {
		return nil, err
	}
	return NewKeyWallet(key, opts...), nil
}

// Account returns the wallet's only account
func (w *KeyWallet) Account(ctx context.Context) (core.Account, error) {
	return core.Account{Address: w.address.Hex()}, nil
}

// Sign signs message with personal_sign semantics after the approver agreed
func (w *KeyWallet) Sign(ctx context.Context, message string, account core.Account) (core.SignedChallenge, error) {
	if !common.IsHexAddress(account.Address) || common.HexToAddress(account.Address) != w.address {
		return core.SignedChallenge{}, core.NewAuthError(core.WalletError,
			fmt.Sprintf("account %s is not managed by this wallet", account.Address), core.ErrInvalidAddress)
	}

	if w.approve != nil {
		ok, err := w.approve(ctx, message, account)
		if err != nil {
			return core.SignedChallenge{}, core.NewAuthError(core.WalletError, "approval prompt failed", err)
		}
		if !ok {
			return core.SignedChallenge{}, core.NewAuthError(core.UserDenied, "user denied message signature", nil)
		}
	}

	hash, sig, err := eth.SignText(w.key, message)
	if err != nil {
		return core.SignedChallenge{}, core.NewAuthError(core.WalletError, "signing failed", err)
	}

	return core.SignedChallenge{
		MessageHash: hexutil.Encode(hash),
		Signature:   hexutil.Encode(sig),
	}, nil
}
