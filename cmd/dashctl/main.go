package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"progresshub/internal/cli"
	"progresshub/internal/client"
	"progresshub/internal/config"
	"progresshub/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	var logger *zap.Logger
	factory := func(opts *cli.RootOptions) (*cli.App, error) {
		cfg, err := config.LoadClientConfig()
		if err != nil {
			return nil, fmt.Errorf("load client config: %w", err)
		}

		logger = zap.NewNop()
		if opts.Verbose {
			if dev, err := zap.NewDevelopment(); err == nil {
				logger = dev
			}
		}

		notifier := session.WriterNotifier{W: os.Stderr}
		storeOpts := []session.Option{
			session.WithPersister(session.NewTOMLFilePersister(cfg.SessionFile)),
			session.WithNotifier(notifier),
			session.WithLogger(logger),
		}

		remote, err := client.New(cfg.RemoteURL, cfg.AnonKey, client.WithLogger(logger))
		if err != nil {
			logger.Warn("remote store not configured", zap.Error(err))
			return &cli.App{Session: session.New(nil, storeOpts...), Notifier: notifier}, nil
		}

		store := session.New(remote, storeOpts...)
		return &cli.App{
			Session:  store,
			Remote:   remote.WithTokenSource(store),
			Notifier: notifier,
		}, nil
	}

	err := cli.NewRootCommand(factory).ExecuteContext(ctx)
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
