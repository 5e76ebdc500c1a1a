package service

import (
	"context"

	"moodmate/internal/models"
	"moodmate/internal/repository"

	"github.com/google/uuid"
)

// DashboardService assembles a user's own posts, likes and commented vibes.
type DashboardService struct {
	playlists repository.PlaylistRepository
	enrich    enricher
}

// NewDashboardService wires a DashboardService.
func NewDashboardService(
	playlists repository.PlaylistRepository,
	profiles repository.ProfileRepository,
	likes repository.LikeRepository,
) *DashboardService {
	return &DashboardService{
		playlists: playlists,
		enrich:    enricher{profiles: profiles, likes: likes},
	}
}

type playlistLoader func(ctx context.Context, userID uuid.UUID, limit int) ([]models.Playlist, error)

// Get returns the user's own posts, liked posts and commented posts.
func (s *DashboardService) Get(ctx context.Context, userID uuid.UUID) (*models.Dashboard, error) {
	d := &models.Dashboard{Profile: s.enrich.ownerProfile(ctx, userID)}

	var err error
	if d.MyPosts, err = s.load(ctx, userID, s.playlists.ListByUser); err != nil {
		return nil, err
	}
	if d.Liked, err = s.load(ctx, userID, s.playlists.ListLikedBy); err != nil {
		return nil, err
	}
	if d.Commented, err = s.load(ctx, userID, s.playlists.ListCommentedBy); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DashboardService) load(ctx context.Context, userID uuid.UUID, fn playlistLoader) ([]models.Playlist, error) {
	items, err := fn(ctx, userID, repository.MaxFeedLimit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Playlist{}
	}
	if err := s.enrich.playlists(ctx, userID, items); err != nil {
		return nil, err
	}
	return items, nil
}
