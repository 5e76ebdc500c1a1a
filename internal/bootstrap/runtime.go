// Package bootstrap wires the database and Redis for the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"moodmate/internal/cache"
	"moodmate/internal/config"
	"moodmate/internal/database"
	"moodmate/internal/middleware"
	"moodmate/internal/models"
	"moodmate/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	ApplySchema bool
	// SeedDemo seeds an empty development database.
	SeedDemo bool
	Seed     seed.Options
}

// InitRuntime connects to DB and Redis, applies the schema and optionally
// seeds demo data. The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		if _, err := SeedDemoIfEmpty(ctx, cfg, db, opts.Seed); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

// SeedDemoIfEmpty seeds demo data when running in development and no
// profile exists yet. It reports whether seeding ran.
func SeedDemoIfEmpty(ctx context.Context, cfg *config.Config, db *gorm.DB, opts seed.Options) (bool, error) {
	if cfg == nil || db == nil || !strings.EqualFold(cfg.Env, "development") {
		return false, nil
	}

	var profiles int64
	if err := db.WithContext(ctx).Model(&models.Profile{}).Count(&profiles).Error; err != nil {
		return false, err
	}
	if profiles > 0 {
		return false, nil
	}

	if opts.NumUsers <= 0 {
		opts = seed.Options{NumUsers: 8, NumVibes: 30, MaxComments: 6, MaxLikes: 5}
	}
	if opts.MonthlyQuota <= 0 {
		opts.MonthlyQuota = cfg.VibeMonthlyQuota
	}
	summary, err := seed.Seed(ctx, db, opts)
	if err != nil {
		return false, err
	}
	middleware.Logger.InfoContext(ctx, "development demo data seeded",
		slog.Int("profiles", summary.Profiles), slog.Int("vibes", summary.Vibes))
	return true, nil
}
