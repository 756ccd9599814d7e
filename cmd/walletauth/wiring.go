package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/charmbracelet/huh"
	"github.com/layer-3/walletauth/adapters/cache"
	"github.com/layer-3/walletauth/adapters/events"
	"github.com/layer-3/walletauth/adapters/graphql"
	"github.com/layer-3/walletauth/adapters/store"
	"github.com/layer-3/walletauth/adapters/wallet"
	"github.com/layer-3/walletauth/config"
	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/internal/eth"
	"github.com/layer-3/walletauth/ports"
	"github.com/layer-3/walletauth/service"
	"github.com/redis/go-redis/v9"
)

// deps holds everything a command needs; close releases it
type deps struct {
	api      *graphql.Client
	sessions ports.SessionStore
	cache    ports.DataCache
	events   ports.EventPublisher
	closers  []func() error
	logger   *slog.Logger
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.logger.Warn("Failed to release resource", "error", err)
		}
	}
}

// newDeps wires storage, cache and events: Redis when configured, local otherwise.
// fallback is the publisher used without Redis, may be nil.
func newDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger, fallback message.Publisher) (*deps, error) {
	d := &deps{
		api:    graphql.New(cfg.GraphQLURL),
		logger: logger,
	}

	if cfg.RedisURL == "" {
		d.sessions = store.NewFileStore(cfg.SessionFile)
		d.cache = cache.NewMemoryCache()
		if fallback != nil {
			d.events = events.NewWatermillPublisher(fallback)
		}
		return d, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisClient := redis.NewClient(opts)
	d.closers = append(d.closers, redisClient.Close)

	if err := redisClient.Ping(ctx).Err(); err != nil {
		d.close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		d.close()
		return nil, fmt.Errorf("failed to create Redis publisher: %w", err)
	}
	d.closers = append(d.closers, publisher.Close)

	d.sessions = store.NewRedisStore(redisClient, cfg.Profile)
	d.cache = cache.NewRedisCache(redisClient, cfg.Profile)
	d.events = events.NewWatermillPublisher(publisher)
	return d, nil
}

func (d *deps) authenticator(w ports.WalletProvider, cfg *config.Config) *service.Authenticator {
	opts := []service.Option{
		service.WithLoginTimeout(cfg.LoginTimeout),
		service.WithLogger(d.logger),
	}
	if d.events != nil {
		opts = append(opts, service.WithEventPublisher(d.events))
	}
	return service.NewAuthenticator(w, d.api, d.sessions, d.cache, opts...)
}

// openWallet picks the RPC wallet, then the keystore, then a raw key
func openWallet(ctx context.Context, cfg *config.Config, interactive bool) (ports.WalletProvider, func(), error) {
	if cfg.WalletRPCURL != "" {
		w, err := wallet.DialRPCWallet(ctx, cfg.WalletRPCURL)
		if err != nil {
			return nil, nil, err
		}
		return w, w.Close, nil
	}

	var keyOpts []wallet.KeyOption
	if interactive {
		keyOpts = append(keyOpts, wallet.WithApprover(confirmSignature))
	}

	switch {
	case cfg.KeyFile != "":
		passphrase := cfg.KeyPassphrase
		if passphrase == "" && interactive {
			if err := huh.NewInput().
				Title("Keystore passphrase").
				EchoMode(huh.EchoModePassword).
				Value(&passphrase).
				Run(); err != nil {
				return nil, nil, core.NewAuthError(core.WalletError, "failed to read passphrase", err)
			}
		}
		w, err := wallet.OpenKeystore(cfg.KeyFile, passphrase, keyOpts...)
		if err != nil {
			return nil, nil, core.NewAuthError(core.WalletError, "failed to open keystore", err)
		}
		return w, func() {}, nil
	case cfg.PrivateKey != "":
		key, err := eth.ParsePrivateKey(cfg.PrivateKey)
		if err != nil {
			return nil, nil, core.NewAuthError(core.WalletError, "invalid private key", err)
		}
		return wallet.NewKeyWallet(key, keyOpts...), func() {}, nil
	default:
		return nil, nil, core.NewAuthError(core.WalletError,
			"no wallet configured, set WALLETAUTH_WALLET_RPC_URL, WALLETAUTH_KEY_FILE or WALLETAUTH_PRIVATE_KEY", nil)
	}
}

// confirmSignature asks on the terminal before signing
func confirmSignature(ctx context.Context, message string, account core.Account) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Sign login message for %s?", account.Address)).
		Description(message).
		Affirmative("Sign").
		Negative("Reject").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
