package bootstrap

import (
	"context"
	"testing"
	"time"

	"moodmate/internal/config"
	"moodmate/internal/database"
	"moodmate/internal/models"
	"moodmate/internal/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func TestSeedDemoIfEmpty(t *testing.T) {
	ctx := context.Background()
	opts := seed.Options{NumUsers: 2, NumVibes: 3, RandSeed: 1}

	t.Run("seeds an empty development database once", func(t *testing.T) {
		db := newTestDB(t)
		cfg := &config.Config{Env: "development", VibeMonthlyQuota: 5}

		ran, err := SeedDemoIfEmpty(ctx, cfg, db, opts)
		require.NoError(t, err)
		assert.True(t, ran)

		var vibes int64
		require.NoError(t, db.Model(&models.Playlist{}).Count(&vibes).Error)
		assert.Equal(t, int64(3), vibes)

		ran, err = SeedDemoIfEmpty(ctx, cfg, db, opts)
		require.NoError(t, err)
		assert.False(t, ran, "existing profiles block a second run")
	})

	t.Run("never seeds outside development", func(t *testing.T) {
		db := newTestDB(t)
		for _, env := range []string{"production", "staging", "test"} {
			ran, err := SeedDemoIfEmpty(ctx, &config.Config{Env: env}, db, opts)
			require.NoError(t, err)
			assert.False(t, ran, env)
		}
	})
}
