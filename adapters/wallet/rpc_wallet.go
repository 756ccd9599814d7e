package wallet

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/layer-3/walletauth/core"
)

// userRejectedCode is the EIP-1193 "user rejected request" error code
const userRejectedCode = 4001

// RPCWallet is a WalletProvider backed by a JSON-RPC wallet (eth_accounts, personal_sign)
type RPCWallet struct {
	client *rpc.Client
}

// NewRPCWallet wraps an existing RPC client
func NewRPCWallet(client *rpc.Client) *RPCWallet {
	return &RPCWallet{client: client}
}

// DialRPCWallet connects to the wallet at url
func DialRPCWallet(ctx context.Context, url string) (*RPCWallet, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, core.NewAuthError(core.WalletError, "wallet provider unavailable", err)
	}
	return NewRPCWallet(client), nil
}

// Account returns the first account the wallet exposes
func (w *RPCWallet) Account(ctx context.Context) (core.Account, error) {
	var addresses []string
	if err := w.client.CallContext(ctx, &addresses, "eth_accounts"); err != nil {
		return core.Account{}, classifyRPCError("failed to list wallet accounts", err)
	}
	if len(addresses) == 0 {
		return core.Account{}, core.NewAuthError(core.WalletError, "wallet exposes no account", nil)
	}
	return core.Account{Address: addresses[0]}, nil
}

// Sign asks the wallet to personal_sign message; the call blocks until the user answers
func (w *RPCWallet) Sign(ctx context.Context, message string, account core.Account) (core.SignedChallenge, error) {
	var signature string
	err := w.client.CallContext(ctx, &signature, "personal_sign", hexutil.Encode([]byte(message)), account.Address)
	if err != nil {
		return core.SignedChallenge{}, classifyRPCError("wallet failed to sign challenge", err)
	}

	return core.SignedChallenge{
		MessageHash: hexutil.Encode(accounts.TextHash([]byte(message))),
		Signature:   signature,
	}, nil
}

// Close closes the RPC connection
func (w *RPCWallet) Close() {
	w.client.Close()
}

func classifyRPCError(message string, err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == userRejectedCode {
		return core.NewAuthError(core.UserDenied, "user denied message signature", err)
	}
	return core.NewAuthError(core.WalletError, message, err)
}
