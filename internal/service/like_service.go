package service

import (
	"context"

	"moodmate/internal/cache"
	"moodmate/internal/models"
	"moodmate/internal/notifications"
	"moodmate/internal/observability"
	"moodmate/internal/repository"

	"github.com/google/uuid"
)

// LikeService toggles and sets likes on playlists and comments.
type LikeService struct {
	likes     repository.LikeRepository
	playlists repository.PlaylistRepository
	comments  repository.CommentRepository
	events    EventPublisher
}

func NewLikeService(
	likes repository.LikeRepository,
	playlists repository.PlaylistRepository,
	comments repository.CommentRepository,
	events EventPublisher,
) *LikeService {
	return &LikeService{likes: likes, playlists: playlists, comments: comments, events: events}
}

func likeLabel(liked bool) string {
	if liked {
		return "liked"
	}
	return "unliked"
}

func (s *LikeService) requirePlaylist(ctx context.Context, id uuid.UUID) error {
	ok, err := s.playlists.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Vibe", id)
	}
	return nil
}

func (s *LikeService) requireComment(ctx context.Context, id uuid.UUID) error {
	ok, err := s.comments.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (s *LikeService) playlistChanged(ctx context.Context, userID, playlistID uuid.UUID, state models.LikeState) {
	observability.LikeToggles.WithLabelValues("playlist", likeLabel(state.Liked)).Inc()
	cache.InvalidateFeed(ctx)
	publish(ctx, s.events, notifications.EventVibeLikeChanged, map[string]any{
		"id":      playlistID,
		"user_id": userID,
		"liked":   state.Liked,
		"likes":   state.Likes,
	})
}

// TogglePlaylist flips the user's like on a playlist.
func (s *LikeService) TogglePlaylist(ctx context.Context, userID, playlistID uuid.UUID) (models.LikeState, error) {
	if err := s.requirePlaylist(ctx, playlistID); err != nil {
		return models.LikeState{}, err
	}
	state, err := s.likes.TogglePlaylist(ctx, userID, playlistID)
	if err != nil {
		return models.LikeState{}, err
	}
	s.playlistChanged(ctx, userID, playlistID, state)
	return state, nil
}

// SetPlaylist likes or unlikes a playlist idempotently.
func (s *LikeService) SetPlaylist(ctx context.Context, userID, playlistID uuid.UUID, liked bool) (models.LikeState, error) {
	if err := s.requirePlaylist(ctx, playlistID); err != nil {
		return models.LikeState{}, err
	}
	state, err := s.likes.SetPlaylist(ctx, userID, playlistID, liked)
	if err != nil {
		return models.LikeState{}, err
	}
	s.playlistChanged(ctx, userID, playlistID, state)
	return state, nil
}

// ToggleComment flips the user's like on a comment.
func (s *LikeService) ToggleComment(ctx context.Context, userID, commentID uuid.UUID) (models.LikeState, error) {
	if err := s.requireComment(ctx, commentID); err != nil {
		return models.LikeState{}, err
	}
	state, err := s.likes.ToggleComment(ctx, userID, commentID)
	if err != nil {
		return models.LikeState{}, err
	}
	observability.LikeToggles.WithLabelValues("comment", likeLabel(state.Liked)).Inc()
	return state, nil
}

// SetComment likes or unlikes a comment idempotently.
func (s *LikeService) SetComment(ctx context.Context, userID, commentID uuid.UUID, liked bool) (models.LikeState, error) {
	if err := s.requireComment(ctx, commentID); err != nil {
		return models.LikeState{}, err
	}
	state, err := s.likes.SetComment(ctx, userID, commentID, liked)
	if err != nil {
		return models.LikeState{}, err
	}
	observability.LikeToggles.WithLabelValues("comment", likeLabel(state.Liked)).Inc()
	return state, nil
}
