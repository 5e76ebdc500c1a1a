// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Playlist represents a shared vibe: a mood label plus streaming links.
type Playlist struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_community_playlists_user_created,priority:1" json:"user_id"`
	Emotion   string    `gorm:"not null" json:"emotion"`
	Tagline   *string   `gorm:"size:60" json:"tagline"`
	Links     Links     `gorm:"not null" json:"links"`
	CreatedAt time.Time `gorm:"index;index:idx_community_playlists_user_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Likes is not persisted; computed at query time
	Likes int64 `gorm:"->;-:migration" json:"likes"`
	// Comments is not persisted; computed at query time
	Comments int64 `gorm:"->;-:migration" json:"comments"`
	// IsLiked indicates whether the viewing user liked this playlist
	IsLiked    bool     `gorm:"-" json:"is_liked"`
	Profile    *Profile `gorm:"-" json:"profile"`
	Thumbnails []string `gorm:"-" json:"thumbnails"`
}

// TableName returns the database table name for Playlist.
func (Playlist) TableName() string {
	return "community_playlists"
}

// BeforeCreate assigns a UUID when the caller did not.
func (p *Playlist) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
