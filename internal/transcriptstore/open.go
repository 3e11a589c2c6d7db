package transcriptstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/config"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/database"
)

// Open builds the backend named by cfg.Store.Backend. The returned close
// func releases whatever Open acquired; rdb stays owned by the caller.
func Open(ctx context.Context, cfg *config.Config, rdb *redis.Client) (Store, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		pool, err := database.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := database.RunMigrations(ctx, pool, cfg.Database.MigrationsPath); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("transcript store ready", "backend", cfg.Store.Backend)
		return NewPostgresStore(pool), pool.Close, nil

	case config.StoreBackendRedis:
		if rdb == nil {
			return nil, nil, fmt.Errorf("redis store selected without a redis client")
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("transcript store ready", "backend", cfg.Store.Backend, "addr", cfg.Redis.Addr)
		return NewRedisStore(rdb, defaultRedisPrefix), func() {}, nil

	case config.StoreBackendMemory, "":
		slog.Warn("using in-memory transcript store, records are lost on restart")
		return NewMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
