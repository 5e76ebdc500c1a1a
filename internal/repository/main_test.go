package repository

import (
	"testing"
	"time"

	"moodmate/internal/database"
	"moodmate/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
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

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func seedPlaylist(t *testing.T, db *gorm.DB, userID uuid.UUID, emotion string, createdAt time.Time) models.Playlist {
	t.Helper()
	p := models.Playlist{
		UserID:    userID,
		Emotion:   emotion,
		Links:     models.Links{"https://open.spotify.com/playlist/" + uuid.NewString()},
		CreatedAt: createdAt.UTC(),
		UpdatedAt: createdAt.UTC(),
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedComment(t *testing.T, db *gorm.DB, playlistID, userID uuid.UUID, parent *uuid.UUID, createdAt time.Time) models.Comment {
	t.Helper()
	c := models.Comment{
		PlaylistID: playlistID,
		UserID:     userID,
		Content:    "nice vibe",
		ParentID:   parent,
		CreatedAt:  createdAt.UTC(),
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}
