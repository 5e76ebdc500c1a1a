package models

import (
	"time"

	"github.com/google/uuid"
)

// PlaylistLike records that a user liked a playlist.
// The combination of UserID and PlaylistID must be unique.
type PlaylistLike struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_playlist_likes_user_playlist" json:"user_id"`
	PlaylistID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_playlist_likes_user_playlist;index" json:"playlist_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for PlaylistLike.
func (PlaylistLike) TableName() string {
	return "playlist_likes"
}

// CommentLike records that a user liked a comment.
// The combination of UserID and CommentID must be unique.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_user_comment" json:"user_id"`
	CommentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_user_comment;index" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for CommentLike.
func (CommentLike) TableName() string {
	return "comment_likes"
}

// LikeState is the outcome of a like mutation.
type LikeState struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
}
