package database

import "moodmate/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters for AutoMigrate: parents before children.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Profile{},
		&models.Playlist{},
		&models.Comment{},
		&models.PlaylistLike{},
		&models.CommentLike{},
	}
}
