package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/layer-3/walletauth/adapters/cache"
	"github.com/layer-3/walletauth/adapters/store"
	"github.com/layer-3/walletauth/adapters/wallet"
	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAPI struct{}

func (staticAPI) EthLogin(ctx context.Context, req core.LoginRequest) (*core.LoginPayload, error) {
	return &core.LoginPayload{
		Token: "t1",
		User: core.User{
			ID:       "7",
			Username: "alice",
			EthAccounts: []core.EthAccount{
				{Address: req.Address, SanBalance: decimal.RequireFromString("12.5")},
			},
		},
	}, nil
}

func TestFormatSessionHuman(t *testing.T) {
	s := &core.Session{
		Address: "0xabc",
		User: core.User{
			ID:          "7",
			Email:       "a@example.com",
			EthAccounts: []core.EthAccount{{Address: "0xabc", SanBalance: decimal.RequireFromString("3")}},
		},
	}

	output := formatSessionHuman(s)
	assert.Contains(t, output, "Logged in as a@example.com")
	assert.Contains(t, output, "0xabc")
	assert.Contains(t, output, "Expires:  never")
}

func TestFormatSessionJSONOmitsToken(t *testing.T) {
	s := &core.Session{ID: "s1", Token: "secret", ExpiresAt: time.Unix(100, 0).UTC()}

	output := formatSessionJSON(s)
	assert.NotContains(t, output, "secret")

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &parsed))
	assert.Equal(t, "s1", parsed["id"])
}

func TestLoginThenWhoami(t *testing.T) {
	ctx := context.Background()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	sessions := store.NewFileStore(t.TempDir() + "/session.json")
	auth := service.NewAuthenticator(wallet.NewKeyWallet(key), staticAPI{}, sessions, cache.NewMemoryCache())

	var buf bytes.Buffer
	require.NoError(t, runLogin(ctx, &buf, auth, ""))
	assert.Contains(t, buf.String(), "Logged in as alice")
	assert.Contains(t, buf.String(), "12.5")

	buf.Reset()
	other := service.NewAuthenticator(noWallet{}, staticAPI{}, sessions, cache.NewMemoryCache())
	require.NoError(t, runWhoami(ctx, &buf, other))
	assert.Contains(t, buf.String(), crypto.PubkeyToAddress(key.PublicKey).Hex())

	require.NoError(t, other.Logout(ctx))
	err = runWhoami(ctx, &buf, other)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestLoginWithForeignAddress(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	auth := service.NewAuthenticator(wallet.NewKeyWallet(key), staticAPI{}, store.NewMemoryStore(), cache.NewMemoryCache())

	err = runLogin(context.Background(), &bytes.Buffer{}, auth, "0x0000000000000000000000000000000000000001")
	assert.ErrorIs(t, err, core.ErrWallet)
}

func TestFormatProjectHuman(t *testing.T) {
	p := &core.Project{
		Name:         "Aragon",
		Ticker:       "ant",
		MarketCapUSD: decimal.RequireFromString("1234.6"),
		GithubLink:   "https://github.com/aragon",
	}

	output := formatProjectHuman(p)
	assert.True(t, strings.HasPrefix(output, "Aragon (ANT)\n"))
	assert.Contains(t, output, "$1235")
	assert.Contains(t, output, "GitHub:")
	assert.NotContains(t, output, "Reddit:")
}

func TestFormatTrendsHuman(t *testing.T) {
	day := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	result := &core.TopicSearch{ChartsData: core.TopicCharts{
		Telegram: []core.Mentions{{Datetime: day, MentionsCount: 2}, {Datetime: day.Add(24 * time.Hour), MentionsCount: 3}},
	}}

	output := formatTrendsHuman("aragon", result)
	assert.Contains(t, output, `Mentions of "aragon": 5`)
	assert.Contains(t, output, "Telegram:")
	assert.Contains(t, output, "2018-01-02 00:00  3")
	assert.NotContains(t, output, "Reddit:")
}
