//go:build integration

package seed

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"

	"moodmate/internal/config"
	"moodmate/internal/database"
	"moodmate/internal/models"

	"github.com/stretchr/testify/require"
)

func parseDatabaseURLToConfig(dsn string) (*config.Config, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	password := ""
	if u.User != nil {
		password, _ = u.User.Password()
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	return &config.Config{
		DBHost:       u.Hostname(),
		DBPort:       port,
		DBUser:       u.User.Username(),
		DBPassword:   password,
		DBName:       strings.TrimPrefix(u.Path, "/"),
		DBSSLMode:    "disable",
		Env:          "test",
		DBSchemaMode: "sql",
	}, nil
}

func TestIntegration_SeedPostgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration seed test")
	}
	cfg, err := parseDatabaseURLToConfig(dsn)
	require.NoError(t, err)

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, database.ApplySchema(ctx, db, cfg))

	summary, err := Seed(ctx, db, Options{
		NumUsers: 10, NumVibes: 40, MaxComments: 5, MaxLikes: 5, ShouldClean: true,
	})
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&models.Playlist{}).Count(&n).Error)
	require.Equal(t, int64(summary.Vibes), n)
}
