package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/internal/eth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyWalletSignsChallenge(t *testing.T) {
	ctx := context.Background()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	w := NewKeyWallet(key)

	account, err := w.Account(ctx)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), account.Address)

	signed, err := w.Sign(ctx, core.ChallengeMessage(account.Address), account)
	require.NoError(t, err)
	assert.Equal(t, core.ChallengeHash(account.Address), signed.MessageHash)
	require.NoError(t, eth.VerifyText(signed.MessageHash, signed.Signature, account.Address))
}

func TestKeyWalletRejectsForeignAccount(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	_, err = NewKeyWallet(key).Sign(context.Background(), "msg", core.Account{Address: "0x0000000000000000000000000000000000000001"})
	assert.ErrorIs(t, err, core.ErrWallet)
	assert.ErrorIs(t, err, core.ErrInvalidAddress)
}

func TestKeyWalletApprover(t *testing.T) {
	ctx := context.Background()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	account := core.Account{Address: crypto.PubkeyToAddress(key.PublicKey).Hex()}

	denied := NewKeyWallet(key, WithApprover(func(context.Context, string, core.Account) (bool, error) {
		return false, nil
	}))
	_, err = denied.Sign(ctx, "msg", account)
	assert.ErrorIs(t, err, core.ErrUserDenied)

	broken := NewKeyWallet(key, WithApprover(func(context.Context, string, core.Account) (bool, error) {
		return false, errors.New("no terminal")
	}))
	_, err = broken.Sign(ctx, "msg", account)
	assert.ErrorIs(t, err, core.ErrWallet)

	var seen string
	approved := NewKeyWallet(key, WithApprover(func(_ context.Context, message string, _ core.Account) (bool, error) {
		seen = message
		return true, nil
	}))
	_, err = approved.Sign(ctx, "msg", account)
	require.NoError(t, err)
	assert.Equal(t, "msg", seen)
}

type rejectedError struct{}

func (rejectedError) Error() string  { return "User denied message signature." }
func (rejectedError) ErrorCode() int { return userRejectedCode }

type fakeEth struct{ accounts []string }

func (f *fakeEth) Accounts() []string { return f.accounts }

type fakePersonal struct {
	key    *ecdsa.PrivateKey
	reject bool
}

func (f *fakePersonal) Sign(data hexutil.Bytes, address string) (string, error) {
	if f.reject {
		return "", rejectedError{}
	}
	_, sig, err := eth.SignText(f.key, string(data))
	if err != nil {
		return "", err
	}
	return hexutil.Encode(sig), nil
}

func newRPCWallet(t *testing.T, reject bool) (*RPCWallet, string) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", &fakeEth{accounts: []string{address}}))
	require.NoError(t, server.RegisterName("personal", &fakePersonal{key: key, reject: reject}))
	t.Cleanup(server.Stop)

	w := NewRPCWallet(rpc.DialInProc(server))
	t.Cleanup(w.Close)
	return w, address
}

func TestRPCWalletSignsChallenge(t *testing.T) {
	ctx := context.Background()
	w, address := newRPCWallet(t, false)

	account, err := w.Account(ctx)
	require.NoError(t, err)
	assert.Equal(t, address, account.Address)

	signed, err := w.Sign(ctx, core.ChallengeMessage(address), account)
	require.NoError(t, err)
	assert.Equal(t, core.ChallengeHash(address), signed.MessageHash)
	require.NoError(t, eth.VerifyText(signed.MessageHash, signed.Signature, address))
}

func TestRPCWalletUserRejection(t *testing.T) {
	ctx := context.Background()
	w, address := newRPCWallet(t, true)

	_, err := w.Sign(ctx, core.ChallengeMessage(address), core.Account{Address: address})
	assert.ErrorIs(t, err, core.ErrUserDenied)
}

func TestRPCWalletNoAccounts(t *testing.T) {
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", &fakeEth{}))
	defer server.Stop()

	w := NewRPCWallet(rpc.DialInProc(server))
	defer w.Close()

	_, err := w.Account(context.Background())
	assert.ErrorIs(t, err, core.ErrWallet)
}
