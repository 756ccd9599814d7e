package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/layer-3/walletauth/config"
	"github.com/spf13/cobra"
)

var (
	assumeYes  bool
	jsonOutput bool
)

type ctxKey struct{}

type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
}

var rootCmd = &cobra.Command{
	Use:   "walletauth",
	Short: "Log into the analytics API with an Ethereum wallet",
	Long: `walletauth signs the login challenge with an Ethereum wallet, exchanges the
signature for a session token and keeps the session for later commands.

Environment Variables:
  WALLETAUTH_GRAPHQL_URL    GraphQL endpoint (default: http://localhost:9000/graphql)
  WALLETAUTH_WALLET_RPC_URL JSON-RPC wallet endpoint
  WALLETAUTH_KEY_FILE       geth keystore file used when no RPC wallet is set
  WALLETAUTH_PRIVATE_KEY    hex private key used when no keystore is set
  WALLETAUTH_REDIS_URL      store sessions and cache in Redis instead of a local file`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := newLogger(cfg.LogLevel)
		slog.SetDefault(logger)

		cmd.SetContext(context.WithValue(cmd.Context(), ctxKey{}, &runtime{cfg: cfg, logger: logger}))
		return nil
	},
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Sign without asking for approval")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

func runtimeFrom(cmd *cobra.Command) *runtime {
	return cmd.Context().Value(ctxKey{}).(*runtime)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
