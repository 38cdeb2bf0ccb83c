package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"git.sr.ht/~jakintosh/inkwell/internal/config"
	"git.sr.ht/~jakintosh/inkwell/internal/database"
	"git.sr.ht/~jakintosh/inkwell/internal/service"
	"github.com/redis/go-redis/v9"
)

type refreshPruner interface {
	PruneRefresh(ctx context.Context, now time.Time) (int64, error)
}

type userDatabase interface {
	refreshPruner
	io.Closer
	UserStore() service.UserStore
	RotationStore() service.RotationStore
}

type postgresDatabase struct {
	*database.PostgresStore
	db *sql.DB
}

func (p postgresDatabase) Close() error { return p.db.Close() }

func openStore(
	ctx context.Context,
	cfg *config.Config,
) (
	userDatabase,
	error,
) {
	switch cfg.DBDriver {
	case "postgres":
		store, db, err := database.OpenPostgres(ctx, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		return postgresDatabase{PostgresStore: store, db: db}, nil
	default:
		store, err := database.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

type rotationBackend struct {
	store  service.RotationStore
	pruner refreshPruner
	closer io.Closer
}

func (r *rotationBackend) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// openRotation returns nil when rotation is lenient.
func openRotation(
	ctx context.Context,
	cfg *config.Config,
	db userDatabase,
) (
	*rotationBackend,
	error,
) {
	if !cfg.StrictRotation() {
		return nil, nil
	}

	if cfg.RotationStore != "redis" {
		return &rotationBackend{store: db.RotationStore(), pruner: db}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping error: %w", err)
	}
	return &rotationBackend{store: database.NewRedisRotationStore(client), closer: client}, nil
}
