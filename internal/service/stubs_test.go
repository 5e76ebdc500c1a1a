package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"moodmate/internal/models"
	"moodmate/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// playlistRepoStub is a stub for repository.PlaylistRepository.
type playlistRepoStub struct {
	listFn            func(context.Context, repository.ListOptions) ([]models.Playlist, error)
	getByIDFn         func(context.Context, uuid.UUID) (*models.Playlist, error)
	existsFn          func(context.Context, uuid.UUID) (bool, error)
	listByUserFn      func(context.Context, uuid.UUID, int) ([]models.Playlist, error)
	listLikedByFn     func(context.Context, uuid.UUID, int) ([]models.Playlist, error)
	listCommentedByFn func(context.Context, uuid.UUID, int) ([]models.Playlist, error)
	countSinceFn      func(context.Context, uuid.UUID, time.Time) (int64, error)
	emotionsSinceFn   func(context.Context, uuid.UUID, time.Time) ([]string, error)
	createWithQuotaFn func(context.Context, *models.Playlist, int, time.Time) error
	updateFn          func(context.Context, *models.Playlist) error
	deleteFn          func(context.Context, uuid.UUID) error
}

func (s *playlistRepoStub) List(ctx context.Context, opts repository.ListOptions) ([]models.Playlist, error) {
	return s.listFn(ctx, opts)
}
func (s *playlistRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	return s.getByIDFn(ctx, id)
}
func (s *playlistRepoStub) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *playlistRepoStub) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Playlist, error) {
	return s.listByUserFn(ctx, userID, limit)
}
func (s *playlistRepoStub) ListLikedBy(ctx context.Context, userID uuid.UUID, limit int) ([]models.Playlist, error) {
	return s.listLikedByFn(ctx, userID, limit)
}
func (s *playlistRepoStub) ListCommentedBy(ctx context.Context, userID uuid.UUID, limit int) ([]models.Playlist, error) {
	return s.listCommentedByFn(ctx, userID, limit)
}
func (s *playlistRepoStub) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	return s.countSinceFn(ctx, userID, since)
}
func (s *playlistRepoStub) EmotionsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]string, error) {
	return s.emotionsSinceFn(ctx, userID, since)
}
func (s *playlistRepoStub) CreateWithQuota(ctx context.Context, p *models.Playlist, limit int, windowStart time.Time) error {
	return s.createWithQuotaFn(ctx, p, limit, windowStart)
}
func (s *playlistRepoStub) Update(ctx context.Context, p *models.Playlist) error {
	return s.updateFn(ctx, p)
}
func (s *playlistRepoStub) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func noopPlaylistRepo() *playlistRepoStub {
	return &playlistRepoStub{
		listFn:            func(_ context.Context, _ repository.ListOptions) ([]models.Playlist, error) { return nil, nil },
		getByIDFn:         func(_ context.Context, _ uuid.UUID) (*models.Playlist, error) { return nil, gorm.ErrRecordNotFound },
		existsFn:          func(_ context.Context, _ uuid.UUID) (bool, error) { return true, nil },
		listByUserFn:      func(_ context.Context, _ uuid.UUID, _ int) ([]models.Playlist, error) { return nil, nil },
		listLikedByFn:     func(_ context.Context, _ uuid.UUID, _ int) ([]models.Playlist, error) { return nil, nil },
		listCommentedByFn: func(_ context.Context, _ uuid.UUID, _ int) ([]models.Playlist, error) { return nil, nil },
		countSinceFn:      func(_ context.Context, _ uuid.UUID, _ time.Time) (int64, error) { return 0, nil },
		emotionsSinceFn:   func(_ context.Context, _ uuid.UUID, _ time.Time) ([]string, error) { return nil, nil },
		createWithQuotaFn: func(_ context.Context, _ *models.Playlist, _ int, _ time.Time) error { return nil },
		updateFn:          func(_ context.Context, _ *models.Playlist) error { return nil },
		deleteFn:          func(_ context.Context, _ uuid.UUID) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn         func(context.Context, *models.Comment) error
	getByIDFn        func(context.Context, uuid.UUID) (*models.Comment, error)
	existsFn         func(context.Context, uuid.UUID) (bool, error)
	listByPlaylistFn func(context.Context, uuid.UUID) ([]models.Comment, error)
	deleteManyFn     func(context.Context, []uuid.UUID) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *commentRepoStub) ListByPlaylist(ctx context.Context, playlistID uuid.UUID) ([]models.Comment, error) {
	return s.listByPlaylistFn(ctx, playlistID)
}
func (s *commentRepoStub) DeleteMany(ctx context.Context, ids []uuid.UUID) error {
	return s.deleteManyFn(ctx, ids)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:         func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:        func(_ context.Context, _ uuid.UUID) (*models.Comment, error) { return nil, gorm.ErrRecordNotFound },
		existsFn:         func(_ context.Context, _ uuid.UUID) (bool, error) { return true, nil },
		listByPlaylistFn: func(_ context.Context, _ uuid.UUID) ([]models.Comment, error) { return nil, nil },
		deleteManyFn:     func(_ context.Context, _ []uuid.UUID) error { return nil },
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	togglePlaylistFn   func(context.Context, uuid.UUID, uuid.UUID) (models.LikeState, error)
	setPlaylistFn      func(context.Context, uuid.UUID, uuid.UUID, bool) (models.LikeState, error)
	likedPlaylistIDsFn func(context.Context, uuid.UUID, []uuid.UUID) ([]uuid.UUID, error)
	toggleCommentFn    func(context.Context, uuid.UUID, uuid.UUID) (models.LikeState, error)
	setCommentFn       func(context.Context, uuid.UUID, uuid.UUID, bool) (models.LikeState, error)
	likedCommentIDsFn  func(context.Context, uuid.UUID, []uuid.UUID) ([]uuid.UUID, error)
}

func (s *likeRepoStub) TogglePlaylist(ctx context.Context, userID, playlistID uuid.UUID) (models.LikeState, error) {
	return s.togglePlaylistFn(ctx, userID, playlistID)
}
func (s *likeRepoStub) SetPlaylist(ctx context.Context, userID, playlistID uuid.UUID, liked bool) (models.LikeState, error) {
	return s.setPlaylistFn(ctx, userID, playlistID, liked)
}
func (s *likeRepoStub) LikedPlaylistIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	return s.likedPlaylistIDsFn(ctx, userID, ids)
}
func (s *likeRepoStub) ToggleComment(ctx context.Context, userID, commentID uuid.UUID) (models.LikeState, error) {
	return s.toggleCommentFn(ctx, userID, commentID)
}
func (s *likeRepoStub) SetComment(ctx context.Context, userID, commentID uuid.UUID, liked bool) (models.LikeState, error) {
	return s.setCommentFn(ctx, userID, commentID, liked)
}
func (s *likeRepoStub) LikedCommentIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	return s.likedCommentIDsFn(ctx, userID, ids)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		togglePlaylistFn:   func(_ context.Context, _, _ uuid.UUID) (models.LikeState, error) { return models.LikeState{}, nil },
		setPlaylistFn:      func(_ context.Context, _, _ uuid.UUID, _ bool) (models.LikeState, error) { return models.LikeState{}, nil },
		likedPlaylistIDsFn: func(_ context.Context, _ uuid.UUID, _ []uuid.UUID) ([]uuid.UUID, error) { return nil, nil },
		toggleCommentFn:    func(_ context.Context, _, _ uuid.UUID) (models.LikeState, error) { return models.LikeState{}, nil },
		setCommentFn:       func(_ context.Context, _, _ uuid.UUID, _ bool) (models.LikeState, error) { return models.LikeState{}, nil },
		likedCommentIDsFn:  func(_ context.Context, _ uuid.UUID, _ []uuid.UUID) ([]uuid.UUID, error) { return nil, nil },
	}
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	getByIDFn  func(context.Context, uuid.UUID) (*models.Profile, error)
	getByIDsFn func(context.Context, []uuid.UUID) ([]models.Profile, error)
	upsertFn   func(context.Context, *models.Profile) error
}

func (s *profileRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.getByIDFn(ctx, id)
}
func (s *profileRepoStub) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *profileRepoStub) Upsert(ctx context.Context, p *models.Profile) error {
	return s.upsertFn(ctx, p)
}

func noopProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*models.Profile, error) { return nil, gorm.ErrRecordNotFound },
		getByIDsFn: func(_ context.Context, ids []uuid.UUID) ([]models.Profile, error) {
			out := make([]models.Profile, 0, len(ids))
			for _, id := range ids {
				out = append(out, models.Profile{ID: id, FullName: "user-" + id.String()[:8]})
			}
			return out, nil
		},
		upsertFn: func(_ context.Context, _ *models.Profile) error { return nil },
	}
}

type publishedEvent struct {
	Type    string
	Payload any
}

// eventRecorder captures published events.
type eventRecorder struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (r *eventRecorder) PublishCommunityEvent(_ context.Context, eventType string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{Type: eventType, Payload: payload})
	return r.err
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func fixedNow() time.Time {
	return time.Date(2026, time.March, 14, 15, 9, 26, 0, time.UTC)
}
