package service

import (
	"context"
	"fmt"
	"strings"

	"moodmate/internal/models"
	"moodmate/internal/repository"
	"moodmate/internal/validation"

	"github.com/google/uuid"
)

type ProfileService struct {
	profiles repository.ProfileRepository
}

type UpsertProfileInput struct {
	UserID    uuid.UUID
	FullName  string
	AvatarURL string
}

type profileFields struct {
	FullName  string `json:"full_name" validate:"max=100"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,http_url"`
}

func NewProfileService(profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Profile", id)
		}
		return nil, err
	}
	return p, nil
}

// Upsert creates or replaces the caller's own profile.
func (s *ProfileService) Upsert(ctx context.Context, in UpsertProfileInput) (*models.Profile, error) {
	fields := profileFields{
		FullName:  validation.PlainText(in.FullName),
		AvatarURL: strings.TrimSpace(in.AvatarURL),
	}
	if err := validation.Struct(fields); err != nil {
		return nil, err
	}

	p := &models.Profile{ID: in.UserID, FullName: fields.FullName, AvatarURL: fields.AvatarURL}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return p, nil
}
