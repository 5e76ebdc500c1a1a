// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"moodmate/internal/models"
	"moodmate/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Feed sort modes.
const (
	SortLatest   = "latest"
	SortPopular  = "popular"
	SortTrending = "trending"
)

// MaxFeedLimit caps every playlist listing.
const MaxFeedLimit = 50

// TrendingWindow is how far back likes count towards the trending sort.
const TrendingWindow = 7 * 24 * time.Hour

// ListOptions selects a page of the community feed.
type ListOptions struct {
	Sort  string
	Query string
	Limit int
	Now   time.Time
}

// PlaylistRepository defines the interface for playlist data operations
type PlaylistRepository interface {
	List(ctx context.Context, opts ListOptions) ([]models.Playlist, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Playlist, error)
	ListLikedBy(ctx context.Context, userID uuid.UUID, limit int) ([]models.Playlist, error)
	ListCommentedBy(ctx context.Context, userID uuid.UUID, limit int) ([]models.Playlist, error)
	CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
	EmotionsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]string, error)
	CreateWithQuota(ctx context.Context, p *models.Playlist, limit int, windowStart time.Time) error
	Update(ctx context.Context, p *models.Playlist) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type playlistRepository struct {
	db *gorm.DB
}

// NewPlaylistRepository creates a new playlist repository
func NewPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &playlistRepository{db: db}
}

const playlistDetailsSelect = "community_playlists.*, " +
	"(SELECT COUNT(*) FROM playlist_likes WHERE playlist_likes.playlist_id = community_playlists.id) AS likes, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.playlist_id = community_playlists.id) AS comments"

// withDetails adds like and comment counts as correlated subqueries.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Playlist{}).Select(playlistDetailsSelect)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxFeedLimit {
		return MaxFeedLimit
	}
	return limit
}

func (r *playlistRepository) List(ctx context.Context, opts ListOptions) ([]models.Playlist, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "List", "community_playlists")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	q := r.db.WithContext(ctx).Model(&models.Playlist{})
	switch opts.Sort {
	case SortTrending:
		q = q.Select(playlistDetailsSelect+", "+
			"(SELECT COUNT(*) FROM playlist_likes WHERE playlist_likes.playlist_id = community_playlists.id "+
			"AND playlist_likes.created_at >= ?) AS recent_likes", now.Add(-TrendingWindow)).
			Order("recent_likes DESC").
			Order("community_playlists.created_at DESC")
	case SortPopular:
		q = q.Select(playlistDetailsSelect).
			Order("likes DESC").
			Order("community_playlists.created_at DESC")
	default:
		q = q.Select(playlistDetailsSelect).
			Order("community_playlists.created_at DESC")
	}

	if term := strings.TrimSpace(opts.Query); term != "" {
		q = q.Where(`LOWER(community_playlists.emotion) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(term))+"%")
	}

	var playlists []models.Playlist
	err = q.Limit(clampLimit(opts.Limit)).Find(&playlists).Error
	return playlists, err
}

func (r *playlistRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	var p models.Playlist
	if err := withDetails(r.db.WithContext(ctx)).
		Where("community_playlists.id = ?", id).
		Take(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *playlistRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Playlist{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *playlistRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Playlist, error) {
	var playlists []models.Playlist
	err := withDetails(r.db.WithContext(ctx)).
		Where("community_playlists.user_id = ?", userID).
		Order("community_playlists.created_at DESC").
		Limit(clampLimit(limit)).
		Find(&playlists).Error
	return playlists, err
}

// ListLikedBy returns playlists userID liked, most recently liked first.
func (r *playlistRepository) ListLikedBy(ctx context.Context, userID uuid.UUID, limit int) ([]models.Playlist, error) {
	var playlists []models.Playlist
	err := withDetails(r.db.WithContext(ctx)).
		Joins("JOIN playlist_likes AS ul ON ul.playlist_id = community_playlists.id AND ul.user_id = ?", userID).
		Order("ul.created_at DESC").
		Order("ul.id DESC").
		Limit(clampLimit(limit)).
		Find(&playlists).Error
	return playlists, err
}

// ListCommentedBy returns playlists userID commented on, ordered by the
// user's latest comment on each. Each playlist appears once.
func (r *playlistRepository) ListCommentedBy(ctx context.Context, userID uuid.UUID, limit int) ([]models.Playlist, error) {
	var playlists []models.Playlist
	err := withDetails(r.db.WithContext(ctx)).
		Joins("JOIN (SELECT playlist_id, MAX(created_at) AS last_commented_at FROM comments WHERE user_id = ? GROUP BY playlist_id) AS uc "+
			"ON uc.playlist_id = community_playlists.id", userID).
		Order("uc.last_commented_at DESC").
		Limit(clampLimit(limit)).
		Find(&playlists).Error
	return playlists, err
}

func (r *playlistRepository) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	return countSince(r.db.WithContext(ctx), userID, since)
}

func countSince(db *gorm.DB, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := db.Model(&models.Playlist{}).
		Where("user_id = ? AND created_at >= ?", userID, since.UTC()).
		Count(&count).Error
	return count, err
}

// EmotionsSince returns the emotion of each playlist userID shared since
// the given time, oldest first.
func (r *playlistRepository) EmotionsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]string, error) {
	var emotions []string
	err := r.db.WithContext(ctx).
		Model(&models.Playlist{}).
		Where("user_id = ? AND created_at >= ?", userID, since.UTC()).
		Order("created_at ASC").
		Order("id ASC").
		Pluck("emotion", &emotions).Error
	return emotions, err
}

// CreateWithQuota inserts p unless its owner already shared `limit` playlists
// since windowStart. The owner's profile row is locked for the duration of
// the check so concurrent shares by the same user serialize.
func (r *playlistRepository) CreateWithQuota(ctx context.Context, p *models.Playlist, limit int, windowStart time.Time) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "CreateWithQuota", "community_playlists")
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		isPostgres := tx.Dialector.Name() == "postgres"

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&models.Profile{ID: p.UserID}).Error; err != nil {
			return err
		}

		lock := tx.Model(&models.Profile{})
		if isPostgres {
			lock = lock.Clauses(clause.Locking{Strength: "UPDATE"})
			if err := tx.Exec("SELECT set_config('moodmate.vibe_monthly_quota', ?, true)", strconv.Itoa(limit)).Error; err != nil {
				return err
			}
		}
		var owner models.Profile
		if err := lock.Where("id = ?", p.UserID).Take(&owner).Error; err != nil {
			return err
		}

		used, err := countSince(tx, p.UserID, windowStart)
		if err != nil {
			return err
		}
		if used >= int64(limit) {
			return ErrQuotaExceeded
		}

		return tx.Create(p).Error
	})
	if isQuotaTrigger(err) {
		err = ErrQuotaExceeded
	}
	observability.EndSpan(span, err)
	return err
}

// Update writes the editable fields of p.
func (r *playlistRepository) Update(ctx context.Context, p *models.Playlist) error {
	result := r.db.WithContext(ctx).
		Model(&models.Playlist{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"emotion":    p.Emotion,
			"tagline":    p.Tagline,
			"links":      p.Links,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the playlist with its comments and all likes in one transaction.
func (r *playlistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("playlist_id = ?", id)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("playlist_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("playlist_id = ?", id).Delete(&models.PlaylistLike{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Playlist{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
