package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.sr.ht/~jakintosh/inkwell/internal/api"
	"git.sr.ht/~jakintosh/inkwell/internal/config"
	"git.sr.ht/~jakintosh/inkwell/internal/logging"
	"git.sr.ht/~jakintosh/inkwell/internal/routes"
	"git.sr.ht/~jakintosh/inkwell/internal/service"
	"git.sr.ht/~jakintosh/inkwell/internal/tokens"
)

const (
	shutdownTimeout = 10 * time.Second
	pruneInterval   = time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "inkwell stopped", "error", err)
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	cfg *config.Config,
	logger *logging.SlogLogger,
) error {
	logger.Debug(ctx, "loaded config", "config", cfg.String())

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error(ctx, "failed to close database", "error", err)
		}
	}()

	rotation, err := openRotation(ctx, cfg, store)
	if err != nil {
		return err
	}
	if rotation != nil {
		defer func() {
			if err := rotation.Close(); err != nil {
				logger.Error(ctx, "failed to close rotation store", "error", err)
			}
		}()
		if rotation.pruner != nil {
			go pruneRefresh(ctx, rotation.pruner, logger)
		}
	}

	keys, err := cfg.Keys()
	if err != nil {
		return err
	}
	codec := tokens.NewCodec(keys, cfg.TokenIssuer, logger.With("component", "tokens"))

	var rotationStore service.RotationStore
	if rotation != nil {
		rotationStore = rotation.store
	}
	svc := service.New(
		store.UserStore(),
		rotationStore,
		codec,
		codec,
		service.Lifetimes{Access: cfg.AccessTokenTTL, Refresh: cfg.RefreshTokenTTL},
		service.PasswordModeProduction,
		logger.With("component", "service"),
	)

	table, err := routes.NewTable(routes.DefaultRules(), logger.With("component", "routes"))
	if err != nil {
		return err
	}
	if cfg.RoutesFile != "" {
		if err := table.Watch(ctx, cfg.RoutesFile); err != nil {
			return fmt.Errorf("failed to watch routes file: %w", err)
		}
	}

	a := api.New(svc, codec, table, cfg.CookieSecure, logger.With("component", "api"))
	server := &http.Server{
		Addr:              net.JoinHostPort("", cfg.AppPort),
		Handler:           a.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "listening", "addr", server.Addr, "env", cfg.AppEnv, "rotation", cfg.RotationMode)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info(shutdownCtx, "shutting down")
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func pruneRefresh(
	ctx context.Context,
	pruner refreshPruner,
	logger logging.Logger,
) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := pruner.PruneRefresh(ctx, now)
			if err != nil {
				logger.Error(ctx, "failed to prune refresh records", "error", err)
				continue
			}
			if n > 0 {
				logger.Info(ctx, "pruned expired refresh records", "count", n)
			}
		}
	}
}
