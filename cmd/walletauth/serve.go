package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/layer-3/walletauth/adapters/events"
	"github.com/layer-3/walletauth/service"
	httptransport "github.com/layer-3/walletauth/transport/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose login, session and project reads over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := runtimeFrom(cmd)
		ctx := cmd.Context()

		// Without Redis, events go to an in-process channel and are logged
		var local *gochannel.GoChannel
		if rt.cfg.RedisURL == "" {
			local = gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(rt.logger))
			defer local.Close()
			if err := logEvents(ctx, local, rt.logger); err != nil {
				return err
			}
		}

		var fallback message.Publisher
		if local != nil {
			fallback = local
		}
		d, err := newDeps(ctx, rt.cfg, rt.logger, fallback)
		if err != nil {
			return err
		}
		defer d.close()

		w, closeWallet, err := openWallet(ctx, rt.cfg, false)
		if err != nil {
			return err
		}
		defer closeWallet()

		auth := d.authenticator(w, rt.cfg)
		projects := service.NewDataReader(d.api, d.sessions, d.cache, rt.logger)
		router := httptransport.SetupRouter(auth, projects, rt.logger)

		return listen(ctx, rt.cfg.ListenAddr, router, rt.logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func logEvents(ctx context.Context, sub message.Subscriber, logger *slog.Logger) error {
	for _, topic := range []string{events.LoginTopic, events.LogoutTopic} {
		messages, err := sub.Subscribe(ctx, topic)
		if err != nil {
			return err
		}
		go func(topic string) {
			for msg := range messages {
				logger.Info("Session event", "topic", topic, "uuid", msg.UUID, "payload", string(msg.Payload))
				msg.Ack()
			}
		}(topic)
	}
	return nil
}

// listen serves handler on addr until ctx is done, then shuts down
func listen(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("Shutting down", "addr", addr)
	return srv.Shutdown(shutdownCtx)
}
