package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/tally_ledger_store/internal/adapters/lock"
	"github.com/SscSPs/tally_ledger_store/internal/core/ports"
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	"github.com/SscSPs/tally_ledger_store/internal/platform/config"
	"github.com/SscSPs/tally_ledger_store/internal/repositories/database/pgsql"
	"github.com/SscSPs/tally_ledger_store/internal/repositories/memory"
	"github.com/SscSPs/tally_ledger_store/pkg/database"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	level := slog.LevelInfo
	if !cfg.IsProduction {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return &app{cfg: cfg, logger: logger}, nil
}

// repositories opens the storage backend. dryRun selects the in-memory store.
func (a *app) repositories(ctx context.Context, dryRun bool) (portsrepo.RepositoryProvider, func(), error) {
	if dryRun {
		repos, _ := memory.NewRepositoryProvider()
		a.logger.Info("Using in-memory store; nothing will be persisted")
		return repos, func() {}, nil
	}
	if a.cfg.DatabaseURL == "" {
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("PGSQL_URL is not set")
	}
	pool, err := database.NewPgxPool(ctx, a.cfg.DatabaseURL, a.cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil
}

// redisClient connects to REDIS_URL, or returns nil when it is unset.
func (a *app) redisClient(ctx context.Context) (*redis.Client, error) {
	if a.cfg.RedisURL == "" {
		return nil, nil
	}
	return database.NewRedisClient(ctx, a.cfg.RedisURL)
}

// tenantLocker picks the Redis locker when a client is available.
func (a *app) tenantLocker(rdb *redis.Client) ports.TenantLocker {
	if rdb == nil {
		a.logger.Debug("Using in-process tenant locks")
		return lock.NewLocalLocker()
	}
	a.logger.Debug("Using Redis tenant locks", slog.Duration("ttl", a.cfg.SyncLockTTL))
	return lock.NewRedisLocker(rdb, a.cfg.SyncLockTTL)
}
