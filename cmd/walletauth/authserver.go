package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/walletauth/authserver"
	"github.com/layer-3/walletauth/core"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var authserverCmd = &cobra.Command{
	Use:   "authserver",
	Short: "Run a development GraphQL backend that accepts wallet logins",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := runtimeFrom(cmd)

		// Tokens do not survive a restart
		signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return fmt.Errorf("failed to generate signing key: %w", err)
		}

		svc := authserver.NewService(authserver.NewTokenizer(signKey, rt.cfg.TokenTTL), rt.logger)
		seedData(svc, time.Now())

		gin.SetMode(gin.ReleaseMode)
		return listen(cmd.Context(), rt.cfg.AuthServerAddr, authserver.SetupRouter(svc), rt.logger)
	},
}

func init() {
	rootCmd.AddCommand(authserverCmd)
}

func seedData(svc *authserver.Service, now time.Time) {
	svc.AddProject(core.Project{
		ID:             "1",
		Name:           "Aragon",
		Ticker:         "ANT",
		MarketCapUSD:   decimal.RequireFromString("132000000"),
		WebsiteLink:    "https://aragon.org",
		GithubLink:     "https://github.com/aragon",
		RedditLink:     "https://reddit.com/r/aragonproject",
		TwitterLink:    "https://twitter.com/aragonproject",
		WhitepaperLink: "https://github.com/aragon/whitepaper",
	})

	posts := []struct {
		source string
		text   string
		age    time.Duration
	}{
		{authserver.SourceTelegram, "Aragon court is live", 2 * time.Hour},
		{authserver.SourceTelegram, "who is holding ANT? aragon looks strong", 26 * time.Hour},
		{authserver.SourceReddit, "Aragon network governance proposal", 50 * time.Hour},
		{authserver.SourceProfessionalTradersChat, "aragon breakout", 74 * time.Hour},
	}
	for _, p := range posts {
		_ = svc.RecordMention(p.source, p.text, now.Add(-p.age))
	}
}
