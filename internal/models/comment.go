package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a remark on a playlist. A nil ParentID marks a root comment.
type Comment struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PlaylistID uuid.UUID  `gorm:"type:uuid;not null;index" json:"playlist_id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	ParentID   *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`

	// LikesCount is not persisted; computed at query time
	LikesCount int64    `gorm:"->;-:migration" json:"likes_count"`
	IsLiked    bool     `gorm:"-" json:"is_liked"`
	Profile    *Profile `gorm:"-" json:"profile"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string {
	return "comments"
}

// BeforeCreate assigns a UUID when the caller did not.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsRoot reports whether the comment has no parent.
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}
