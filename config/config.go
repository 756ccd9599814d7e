// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config contains all configuration parameters for the client and the dev auth server
type Config struct {
	GraphQLURL    string        `envconfig:"GRAPHQL_URL" default:"http://localhost:9000/graphql"`
	LoginTimeout  time.Duration `envconfig:"LOGIN_TIMEOUT" default:"30s"`
	RedisURL      string        `envconfig:"REDIS_URL"`
	Profile       string        `envconfig:"PROFILE" default:"default"`
	SessionFile   string        `envconfig:"SESSION_FILE"`
	ListenAddr    string        `envconfig:"LISTEN_ADDR" default:":8080"`
	WalletRPCURL  string        `envconfig:"WALLET_RPC_URL"`
	KeyFile       string        `envconfig:"KEY_FILE"`
	KeyPassphrase string        `envconfig:"KEY_PASSPHRASE"`
	PrivateKey    string        `envconfig:"PRIVATE_KEY"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`

	AuthServerAddr string        `envconfig:"AUTHSERVER_ADDR" default:":9000"`
	TokenTTL       time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
}

// Prefix is the environment variable prefix, e.g. WALLETAUTH_GRAPHQL_URL
const Prefix = "WALLETAUTH"

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	// A missing .env file is fine
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process(Prefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.SessionFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = os.TempDir()
		}
		cfg.SessionFile = filepath.Join(dir, "walletauth", cfg.Profile+".session.json")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.GraphQLURL == "" {
		return fmt.Errorf("%s_GRAPHQL_URL cannot be empty", Prefix)
	}
	if c.LoginTimeout <= 0 {
		return fmt.Errorf("%s_LOGIN_TIMEOUT must be > 0", Prefix)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%s_TOKEN_TTL must be > 0", Prefix)
	}
	if c.KeyFile != "" && c.PrivateKey != "" {
		return fmt.Errorf("%s_KEY_FILE and %s_PRIVATE_KEY are mutually exclusive", Prefix, Prefix)
	}
	return nil
}
