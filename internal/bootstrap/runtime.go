// Package bootstrap wires the runtime dependencies shared by the command line tools.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"postboard/internal/cache"
	"postboard/internal/config"
	"postboard/internal/database"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo inserts the demo posts when the posts table is empty.
	SeedDemo bool
}

// InitRuntime connects to DB and Redis and optionally seeds the demo posts.
// Redis is optional: an unreachable Redis yields a nil client.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb, err := cache.Connect(cfg.RedisURL)
	if err != nil {
		middleware.Logger.Warn("Redis unavailable, continuing without it", slog.String("error", err.Error()))
		rdb = nil
	}

	if opts.SeedDemo {
		if err := seedDemoIfEmpty(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo posts: %w", err)
		}
	}

	return db, rdb, nil
}

func seedDemoIfEmpty(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return seed.Seed(ctx, db, seed.Options{})
}
