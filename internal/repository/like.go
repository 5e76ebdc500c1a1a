package repository

import (
	"context"

	"moodmate/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository manages playlist and comment likes. Every mutation relies
// on the unique (user_id, target_id) index, so concurrent calls never
// produce duplicate rows.
type LikeRepository interface {
	TogglePlaylist(ctx context.Context, userID, playlistID uuid.UUID) (models.LikeState, error)
	SetPlaylist(ctx context.Context, userID, playlistID uuid.UUID, liked bool) (models.LikeState, error)
	LikedPlaylistIDs(ctx context.Context, userID uuid.UUID, playlistIDs []uuid.UUID) ([]uuid.UUID, error)

	ToggleComment(ctx context.Context, userID, commentID uuid.UUID) (models.LikeState, error)
	SetComment(ctx context.Context, userID, commentID uuid.UUID, liked bool) (models.LikeState, error)
	LikedCommentIDs(ctx context.Context, userID uuid.UUID, commentIDs []uuid.UUID) ([]uuid.UUID, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// likeTarget describes one of the two like tables.
type likeTarget struct {
	column string
	model  func(userID, targetID uuid.UUID) interface{}
}

var (
	playlistTarget = likeTarget{
		column: "playlist_id",
		model: func(userID, targetID uuid.UUID) interface{} {
			return &models.PlaylistLike{UserID: userID, PlaylistID: targetID}
		},
	}
	commentTarget = likeTarget{
		column: "comment_id",
		model: func(userID, targetID uuid.UUID) interface{} {
			return &models.CommentLike{UserID: userID, CommentID: targetID}
		},
	}
)

func (t likeTarget) remove(tx *gorm.DB, userID, targetID uuid.UUID) (bool, error) {
	result := tx.Where("user_id = ? AND "+t.column+" = ?", userID, targetID).Delete(t.model(uuid.Nil, uuid.Nil))
	return result.RowsAffected > 0, result.Error
}

func (t likeTarget) insert(tx *gorm.DB, userID, targetID uuid.UUID) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: t.column}},
		DoNothing: true,
	}).Create(t.model(userID, targetID)).Error
}

func (t likeTarget) count(tx *gorm.DB, targetID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(t.model(uuid.Nil, uuid.Nil)).Where(t.column+" = ?", targetID).Count(&n).Error
	return n, err
}

// toggle deletes the like if present, otherwise inserts it.
func (r *likeRepository) toggle(ctx context.Context, t likeTarget, userID, targetID uuid.UUID) (models.LikeState, error) {
	var state models.LikeState
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		removed, err := t.remove(tx, userID, targetID)
		if err != nil {
			return err
		}
		if !removed {
			if err := t.insert(tx, userID, targetID); err != nil {
				return err
			}
		}
		state.Liked = !removed
		state.Likes, err = t.count(tx, targetID)
		return err
	})
	return state, err
}

// set makes the like state equal to liked; repeated calls are no-ops.
func (r *likeRepository) set(ctx context.Context, t likeTarget, userID, targetID uuid.UUID, liked bool) (models.LikeState, error) {
	state := models.LikeState{Liked: liked}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if liked {
			err = t.insert(tx, userID, targetID)
		} else {
			_, err = t.remove(tx, userID, targetID)
		}
		if err != nil {
			return err
		}
		state.Likes, err = t.count(tx, targetID)
		return err
	})
	return state, err
}

func (r *likeRepository) TogglePlaylist(ctx context.Context, userID, playlistID uuid.UUID) (models.LikeState, error) {
	return r.toggle(ctx, playlistTarget, userID, playlistID)
}

func (r *likeRepository) SetPlaylist(ctx context.Context, userID, playlistID uuid.UUID, liked bool) (models.LikeState, error) {
	return r.set(ctx, playlistTarget, userID, playlistID, liked)
}

func (r *likeRepository) ToggleComment(ctx context.Context, userID, commentID uuid.UUID) (models.LikeState, error) {
	return r.toggle(ctx, commentTarget, userID, commentID)
}

func (r *likeRepository) SetComment(ctx context.Context, userID, commentID uuid.UUID, liked bool) (models.LikeState, error) {
	return r.set(ctx, commentTarget, userID, commentID, liked)
}

func (r *likeRepository) LikedPlaylistIDs(ctx context.Context, userID uuid.UUID, playlistIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(playlistIDs) == 0 {
		return nil, nil
	}
	var liked []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.PlaylistLike{}).
		Where("user_id = ? AND playlist_id IN ?", userID, playlistIDs).
		Pluck("playlist_id", &liked).Error
	return liked, err
}

func (r *likeRepository) LikedCommentIDs(ctx context.Context, userID uuid.UUID, commentIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(commentIDs) == 0 {
		return nil, nil
	}
	var liked []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.CommentLike{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &liked).Error
	return liked, err
}
