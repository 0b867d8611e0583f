// Package app wires configuration into a running ledger: the storage
// backend, the notification hub, the optional Redis publisher and the use
// case on top of them.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"vaquinha/internal/adapter/memory"
	"vaquinha/internal/adapter/postgres"
	redisadapter "vaquinha/internal/adapter/redis"
	"vaquinha/internal/adapter/usecase"
	"vaquinha/internal/config"
	"vaquinha/internal/config/configs"
	"vaquinha/internal/core/port"
	"vaquinha/internal/db"
	"vaquinha/internal/notify"
)

// App holds the wired components. Close releases them in reverse order.
type App struct {
	Repo    port.CampaignRepository
	Hub     *notify.Hub
	UseCase *usecase.CampaignUseCase

	closers []func() error
}

// New builds the application described by cfg.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{}
	backend, err := cfg.Ledger.BackendName()
	if err != nil {
		return nil, err
	}

	switch backend {
	case configs.BackendMemory:
		a.Repo = memory.NewCampaignRepository()
		logger.Warn("using in-memory ledger; state is lost on exit")
	case configs.BackendPostgres:
		if cfg.Psql.RunMigrations {
			if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied successfully")
		}
		var pool *pgxpool.Pool
		if pool, err = db.NewPostgresPool(ctx, cfg.Psql); err != nil {
			return nil, fmt.Errorf("database connection: %w", err)
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		a.Repo = postgres.NewCampaignRepository(pool, cfg.Ledger.SerializationRetries)
	}

	a.Hub = notify.NewHub(a.Repo, cfg.Ledger.SubscriberBuffer, logger)
	a.closers = append(a.closers, func() error { a.Hub.Close(); return nil })
	publishers := port.MultiPublisher{a.Hub}

	if cfg.Redis.Enabled {
		client, err := redisadapter.NewClient(ctx, cfg.Redis)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("redis connection: %w", err)
		}
		pub := redisadapter.NewPublisher(client, cfg.Redis.Stream, cfg.Redis.MaxLen, logger)
		a.closers = append(a.closers, pub.Close)
		publishers = append(publishers, pub)
		logger.Info("publishing events to redis", slog.String("stream", cfg.Redis.Stream))
	}

	a.UseCase = usecase.NewCampaignUseCase(a.Repo, publishers, logger)
	return a, nil
}

// Close releases every resource opened by New.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
