package database

import (
	"testing"

	"moodmate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPersistentModels_CoverCommunityTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(PersistentModels()...))

	for _, table := range []string{"profiles", "community_playlists", "comments", "playlist_likes", "comment_likes"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	assert.True(t, db.Migrator().HasIndex(&models.PlaylistLike{}, "idx_playlist_likes_user_playlist"))
	assert.True(t, db.Migrator().HasIndex(&models.CommentLike{}, "idx_comment_likes_user_comment"))
	assert.False(t, db.Migrator().HasColumn(&models.Playlist{}, "likes"), "derived counts must not be persisted")
	assert.False(t, db.Migrator().HasColumn(&models.Comment{}, "likes_count"), "derived counts must not be persisted")
}
