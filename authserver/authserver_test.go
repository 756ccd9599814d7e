package authserver

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/walletauth/adapters/cache"
	"github.com/layer-3/walletauth/adapters/graphql"
	"github.com/layer-3/walletauth/adapters/store"
	"github.com/layer-3/walletauth/adapters/wallet"
	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return NewService(NewTokenizer(signKey, time.Hour), nil)
}

func newTestServer(t *testing.T, svc *Service) *graphql.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	server := httptest.NewServer(SetupRouter(svc))
	t.Cleanup(server.Close)
	return graphql.New(server.URL + "/graphql")
}

func TestWalletLoginEndToEnd(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	client := newTestServer(t, svc)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()
	require.NoError(t, svc.SetBalance(address, decimal.RequireFromString("42.5")))

	sessions := store.NewMemoryStore()
	dataCache := cache.NewMemoryCache()
	auth := service.NewAuthenticator(wallet.NewKeyWallet(key), client, sessions, dataCache)

	session, err := auth.Login(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.False(t, session.ExpiresAt.IsZero())
	require.Len(t, session.User.EthAccounts, 1)
	assert.Equal(t, address, session.User.EthAccounts[0].Address)
	assert.True(t, session.User.EthAccounts[0].SanBalance.Equal(decimal.RequireFromString("42.5")))
	assert.Equal(t, 1, dataCache.Resets())

	user, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, user.ID)

	again, err := auth.Login(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, again.User.ID)
	assert.NotEqual(t, session.ID, again.ID)
	assert.Len(t, svc.Users(), 1)
}

type impostor struct {
	claimed core.Account
	signer  *wallet.KeyWallet
}

func (i *impostor) Account(ctx context.Context) (core.Account, error) {
	return i.claimed, nil
}

func (i *impostor) Sign(ctx context.Context, message string, account core.Account) (core.SignedChallenge, error) {
	own, _ := i.signer.Account(ctx)
	return i.signer.Sign(ctx, message, own)
}

func TestWalletLoginRejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	client := newTestServer(t, newTestService(t))

	victim, err := crypto.GenerateKey()
	require.NoError(t, err)
	attacker, err := crypto.GenerateKey()
	require.NoError(t, err)

	sessions := store.NewMemoryStore()
	w := &impostor{
		claimed: core.Account{Address: crypto.PubkeyToAddress(victim.PublicKey).Hex()},
		signer:  wallet.NewKeyWallet(attacker),
	}
	auth := service.NewAuthenticator(w, client, sessions, cache.NewMemoryCache())

	_, err = auth.Login(ctx)
	assert.ErrorIs(t, err, core.ErrInvalidSignature)

	_, err = sessions.Session(ctx)
	assert.ErrorIs(t, err, core.ErrNoSession)
}

func TestEthLoginRejectsForeignMessageHash(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	w := wallet.NewKeyWallet(key)
	account, err := w.Account(ctx)
	require.NoError(t, err)

	signed, err := w.Sign(ctx, "transfer everything", account)
	require.NoError(t, err)

	_, err = svc.EthLogin(ctx, core.LoginRequest{
		Signature:   signed.Signature,
		Address:     account.Address,
		MessageHash: signed.MessageHash,
	})
	assert.ErrorIs(t, err, core.ErrInvalidChallenge)

	_, err = svc.EthLogin(ctx, core.LoginRequest{Address: "nope"})
	assert.ErrorIs(t, err, core.ErrInvalidAddress)
}

func TestProjectQuery(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	svc.AddProject(core.Project{ID: "1", Name: "Aragon", Ticker: "ANT", MarketCapUSD: decimal.RequireFromString("1000000")})
	client := newTestServer(t, svc)

	project, err := client.Project(ctx, "", "1")
	require.NoError(t, err)
	assert.Equal(t, "Aragon", project.Name)
	assert.True(t, project.MarketCapUSD.Equal(decimal.RequireFromString("1000000")))

	_, err = client.Project(ctx, "", "2")
	assert.ErrorIs(t, err, core.ErrProjectNotFound)

	_, err = client.Project(ctx, "garbage", "1")
	var statusErr *graphql.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 401, statusErr.StatusCode)
}

func TestTokenizerRejectsExpiredToken(t *testing.T) {
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tokenizer := NewTokenizer(signKey, time.Minute)

	token, err := tokenizer.Issue(&core.User{ID: "1"}, "0xabc", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = tokenizer.Verify(token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)

	fresh, err := tokenizer.Issue(&core.User{ID: "1"}, "0xabc", time.Now())
	require.NoError(t, err)
	claims, err := tokenizer.Verify(fresh)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
	assert.Equal(t, "0xabc", claims.Address)

	otherKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	_, err = NewTokenizer(otherKey, time.Minute).Verify(fresh)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestTopicSearchQuery(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	day := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.RecordMention(SourceTelegram, "Aragon network launched", day.Add(2*time.Hour)))
	require.NoError(t, svc.RecordMention(SourceTelegram, "buying more ARAGON", day.Add(5*time.Hour)))
	require.NoError(t, svc.RecordMention(SourceTelegram, "aragon again", day.Add(26*time.Hour)))
	require.NoError(t, svc.RecordMention(SourceReddit, "aragon court", day.Add(30*time.Hour)))
	require.NoError(t, svc.RecordMention(SourceReddit, "unrelated post", day.Add(30*time.Hour)))
	require.NoError(t, svc.RecordMention(SourceReddit, "aragon outside the range", day.Add(72*time.Hour)))
	assert.Error(t, svc.RecordMention("twitter", "aragon", day))

	client := newTestServer(t, svc)
	result, err := client.TopicSearch(ctx, "", core.TopicQuery{
		SearchText: "aragon",
		From:       day,
		To:         day.Add(48 * time.Hour),
		Interval:   "1d",
	})
	require.NoError(t, err)

	require.Len(t, result.ChartsData.Telegram, 2)
	assert.True(t, day.Equal(result.ChartsData.Telegram[0].Datetime))
	assert.Equal(t, 2, result.ChartsData.Telegram[0].MentionsCount)
	assert.Equal(t, 1, result.ChartsData.Telegram[1].MentionsCount)
	require.Len(t, result.ChartsData.Reddit, 1)
	assert.True(t, day.Add(24*time.Hour).Equal(result.ChartsData.Reddit[0].Datetime))
	assert.Empty(t, result.ChartsData.ProfessionalTradersChat)
	assert.Equal(t, 4, result.Total())

	_, err = client.TopicSearch(ctx, "", core.TopicQuery{SearchText: "aragon", From: day, To: day.Add(time.Hour), Interval: "fortnight"})
	var gqlErrs graphql.ResponseErrors
	assert.ErrorAs(t, err, &gqlErrs)
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"", 24 * time.Hour, true},
		{"1h", time.Hour, true},
		{"7d", 7 * 24 * time.Hour, true},
		{"0d", 0, false},
		{"-1h", 0, false},
		{"week", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseInterval(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
