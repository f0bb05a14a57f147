// Package main is the entry point for the sharedtodo CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sharedtodo/internal/cli"
	"sharedtodo/internal/commands"
	"sharedtodo/internal/config"
	"sharedtodo/internal/store"
	"sharedtodo/internal/store/googletasks"
	"sharedtodo/internal/store/localstore"
	"sharedtodo/internal/store/memory"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, openStore)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// openStore opens the backend named by cfg.Backend.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(memory.Options{Logger: cfg.Logger}), nil, nil

	case config.BackendLocal:
		if cfg.Database == "" {
			if err := cfg.EnsureDir(); err != nil {
				return nil, nil, fmt.Errorf("failed to create config directory: %w", err)
			}
		}
		db, err := localstore.OpenDB(cfg.DatabasePath())
		if err != nil {
			return nil, nil, err
		}
		st, err := localstore.Open(ctx, db, localstore.Options{
			Key:          cfg.Namespace,
			PollInterval: cfg.PollInterval,
			Logger:       cfg.Logger,
		})
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return st, db.Close, nil

	case config.BackendGoogleTasks:
		c, err := googletasks.New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return c, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}
