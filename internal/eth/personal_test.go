package eth

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyText(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	hash, sig, err := SignText(key, "hello")
	require.NoError(t, err)
	assert.Contains(t, []byte{27, 28}, sig[64])

	require.NoError(t, VerifyText(hexutil.Encode(hash), hexutil.Encode(sig), address))

	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	otherAddress := crypto.PubkeyToAddress(other.PublicKey).Hex()
	assert.ErrorIs(t, VerifyText(hexutil.Encode(hash), hexutil.Encode(sig), otherAddress), ErrSignatureMismatch)
}

func TestRecoverAddressAcceptsRawRecoveryID(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	hash, sig, err := SignText(key, "hello")
	require.NoError(t, err)
	sig[64] -= 27

	got, err := RecoverAddress(hash, sig)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), got)
}

func TestVerifyTextRejectsMalformedInput(t *testing.T) {
	assert.Error(t, VerifyText("0x01", "0x02", "not-an-address"))
	assert.Error(t, VerifyText("zz", "0x02", "0x0000000000000000000000000000000000000001"))
	assert.Error(t, VerifyText("0x01", "0x02", "0x0000000000000000000000000000000000000001"))
}

func TestParsePrivateKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	encoded := hexutil.Encode(crypto.FromECDSA(key))

	parsed, err := ParsePrivateKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, key.D, parsed.D)

	_, err = ParsePrivateKey("0xnope")
	assert.Error(t, err)
}
