package core

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Account represents a wallet account as reported by the wallet provider
type Account struct {
	Address string // Ethereum address of the user
}

// IsZero reports whether the account carries no address
func (a Account) IsZero() bool {
	return strings.TrimSpace(a.Address) == ""
}

// SignedChallenge is the wallet's answer to the login challenge
type SignedChallenge struct {
	MessageHash string // EIP-191 hash of the challenge message, hex encoded
	Signature   string // 65 byte R || S || V signature, hex encoded
}

const challengePrefix = "Login in Santiment with address "

// ChallengeMessage returns the fixed message a wallet signs to log in with address
func ChallengeMessage(address string) string {
	return challengePrefix + address
}

// ChallengeHash returns the hex encoded personal-sign hash of the challenge message for address
func ChallengeHash(address string) string {
	return hexutil.Encode(accounts.TextHash([]byte(ChallengeMessage(address))))
}
