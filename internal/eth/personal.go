// Package eth holds the EIP-191 personal-sign helpers shared by the wallet
// adapters and the auth server.
package eth

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrSignatureMismatch = errors.New("signature does not match address")

// SignText signs message the way personal_sign does and returns the hash and the
// 65 byte signature with V in {27, 28}
func SignText(key *ecdsa.PrivateKey, message string) (hash []byte, sig []byte, err error) {
	hash = accounts.TextHash([]byte(message))
	sig, err = crypto.Sign(hash, key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sign message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hash, sig, nil
}

// RecoverAddress returns the address that produced sig over hash.
// Both legacy (27/28) and raw (0/1) recovery ids are accepted.
func RecoverAddress(hash, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(hash, normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifyText checks that the hex signature over the hex hash was made by address
func VerifyText(hashHex, sigHex, address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid address %q", address)
	}
	hash, err := hexutil.Decode(hashHex)
	if err != nil {
		return fmt.Errorf("failed to decode message hash: %w", err)
	}
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}

	recovered, err := RecoverAddress(hash, sig)
	if err != nil {
		return err
	}
	if recovered != common.HexToAddress(address) {
		return ErrSignatureMismatch
	}
	return nil
}

// ParsePrivateKey parses a hex encoded secp256k1 private key, with or without 0x
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return key, nil
}

// DecryptKeystore decrypts a geth keystore JSON file
func DecryptKeystore(keyJSON []byte, passphrase string) (*ecdsa.PrivateKey, error) {
	key, err := keystore.DecryptKey(keyJSON, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt keystore: %w", err)
	}
	return key.PrivateKey, nil
}
