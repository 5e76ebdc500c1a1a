package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public display identity of an auth user.
// ID equals the auth user id.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string    `gorm:"size:100;not null;default:''" json:"full_name"`
	AvatarURL string    `gorm:"not null;default:''" json:"avatar_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Profile.
func (Profile) TableName() string {
	return "profiles"
}
