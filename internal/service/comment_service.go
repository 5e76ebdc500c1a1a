package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"moodmate/internal/cache"
	"moodmate/internal/models"
	"moodmate/internal/notifications"
	"moodmate/internal/repository"
	"moodmate/internal/thread"
	"moodmate/internal/validation"

	"github.com/google/uuid"
)

// MaxCommentLength is the longest accepted comment, in runes.
const MaxCommentLength = 1000

// CommentService posts, lists and deletes comments and reply threads.
type CommentService struct {
	comments  repository.CommentRepository
	playlists repository.PlaylistRepository
	enrich    enricher
	events    EventPublisher
}

type PostCommentInput struct {
	UserID     uuid.UUID
	PlaylistID uuid.UUID
	Content    string
	ParentID   *uuid.UUID
}

// NewCommentService wires a CommentService.
func NewCommentService(
	comments repository.CommentRepository,
	playlists repository.PlaylistRepository,
	profiles repository.ProfileRepository,
	likes repository.LikeRepository,
	events EventPublisher,
) *CommentService {
	return &CommentService{
		comments:  comments,
		playlists: playlists,
		enrich:    enricher{profiles: profiles, likes: likes},
		events:    events,
	}
}

func (s *CommentService) requirePlaylist(ctx context.Context, id uuid.UUID) error {
	ok, err := s.playlists.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Vibe", id)
	}
	return nil
}

// List returns every comment of a playlist, oldest first, with authors and
// the viewer's like state.
func (s *CommentService) List(ctx context.Context, playlistID, viewer uuid.UUID) ([]models.Comment, error) {
	if err := s.requirePlaylist(ctx, playlistID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	if err := s.enrich.comments(ctx, viewer, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// Thread returns the comments of a playlist as a reply tree.
func (s *CommentService) Thread(ctx context.Context, playlistID, viewer uuid.UUID) (thread.Tree, error) {
	comments, err := s.List(ctx, playlistID, viewer)
	if err != nil {
		return thread.Tree{}, err
	}
	return thread.Build(comments), nil
}

// Post adds a comment or a reply. A reply's parent must belong to the same
// playlist; replies to replies are accepted at any depth.
func (s *CommentService) Post(ctx context.Context, in PostCommentInput) (*models.Comment, error) {
	content := validation.PlainText(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", MaxCommentLength))
	}

	if err := s.requirePlaylist(ctx, in.PlaylistID); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		parent, err := s.comments.GetByID(ctx, *in.ParentID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, models.NewValidationError("Parent comment not found")
			}
			return nil, err
		}
		if parent.PlaylistID != in.PlaylistID {
			return nil, models.NewValidationError("Parent comment belongs to a different vibe")
		}
	}

	comment := &models.Comment{
		PlaylistID: in.PlaylistID,
		UserID:     in.UserID,
		Content:    content,
		ParentID:   in.ParentID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	created, err := s.comments.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	created.Profile = s.enrich.ownerProfile(ctx, created.UserID)

	cache.InvalidateFeed(ctx)
	publish(ctx, s.events, notifications.EventCommentCreated, created)
	return created, nil
}

// Delete removes a comment and all of its replies. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return models.NewNotFoundError("Comment", commentID)
		}
		return err
	}
	if comment.UserID != userID {
		return models.NewForbiddenError("You can only delete your own comments")
	}

	siblings, err := s.comments.ListByPlaylist(ctx, comment.PlaylistID)
	if err != nil {
		return err
	}
	ids := append([]uuid.UUID{commentID}, thread.Descendants(siblings, commentID)...)
	if err := s.comments.DeleteMany(ctx, ids); err != nil {
		if repository.IsNotFound(err) {
			return models.NewNotFoundError("Comment", commentID)
		}
		return fmt.Errorf("delete comment: %w", err)
	}

	cache.InvalidateFeed(ctx)
	publish(ctx, s.events, notifications.EventCommentDeleted, map[string]any{
		"id":          commentID,
		"playlist_id": comment.PlaylistID,
		"deleted_ids": ids,
	})
	return nil
}
