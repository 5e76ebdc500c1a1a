package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"moodmate/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaylistRepository_ListSorts(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlaylistRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	owner := uuid.New()
	oldPopular := seedPlaylist(t, db, owner, "Happy", now.Add(-30*24*time.Hour))
	middle := seedPlaylist(t, db, owner, "Sad", now.Add(-2*time.Hour))
	newest := seedPlaylist(t, db, owner, "happy hour", now.Add(-time.Hour))

	// Three old likes on oldPopular, one fresh like on middle.
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.PlaylistLike{
			UserID: uuid.New(), PlaylistID: oldPopular.ID, CreatedAt: now.Add(-20 * 24 * time.Hour),
		}).Error)
	}
	_, err := likes.TogglePlaylist(ctx, uuid.New(), middle.ID)
	require.NoError(t, err)
	seedComment(t, db, newest.ID, owner, nil, now)

	ids := func(ps []models.Playlist) []uuid.UUID {
		out := make([]uuid.UUID, len(ps))
		for i, p := range ps {
			out[i] = p.ID
		}
		return out
	}

	latest, err := repo.List(ctx, ListOptions{Sort: SortLatest})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{newest.ID, middle.ID, oldPopular.ID}, ids(latest))
	assert.Equal(t, int64(1), latest[0].Comments)
	assert.Equal(t, int64(3), latest[2].Likes)

	popular, err := repo.List(ctx, ListOptions{Sort: SortPopular})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{oldPopular.ID, middle.ID, newest.ID}, ids(popular))

	trending, err := repo.List(ctx, ListOptions{Sort: SortTrending, Now: now})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{middle.ID, newest.ID, oldPopular.ID}, ids(trending),
		"only likes inside the trending window count")

	search, err := repo.List(ctx, ListOptions{Query: "HAPPY"})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{newest.ID, oldPopular.ID}, ids(search))

	wildcard, err := repo.List(ctx, ListOptions{Query: "%"})
	require.NoError(t, err)
	assert.Empty(t, wildcard, "LIKE wildcards in the query match literally")

	limited, err := repo.List(ctx, ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestPlaylistRepository_ListCapsAtFifty(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlaylistRepository(db)
	owner := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 55; i++ {
		seedPlaylist(t, db, owner, "Calm", base.Add(time.Duration(i)*time.Second))
	}

	got, err := repo.List(context.Background(), ListOptions{Limit: 500})
	require.NoError(t, err)
	assert.Len(t, got, MaxFeedLimit)
}

func TestPlaylistRepository_GetByIDAndExists(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()

	p := seedPlaylist(t, db, uuid.New(), "Energetic", time.Now())

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Energetic", got.Emotion)
	assert.Equal(t, p.Links, got.Links)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.True(t, IsNotFound(err))

	ok, err := repo.Exists(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPlaylistRepository_CreateWithQuota(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	user := uuid.New()

	// Last month's shares do not count.
	seedPlaylist(t, db, user, "Old", windowStart.Add(-time.Minute))

	for i := 0; i < 5; i++ {
		p := &models.Playlist{UserID: user, Emotion: "Happy", Links: models.Links{"https://youtu.be/x"}}
		require.NoError(t, repo.CreateWithQuota(ctx, p, 5, windowStart), "share %d", i+1)
	}

	sixth := &models.Playlist{UserID: user, Emotion: "Happy", Links: models.Links{"https://youtu.be/x"}}
	err := repo.CreateWithQuota(ctx, sixth, 5, windowStart)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	used, err := repo.CountSince(ctx, user, windowStart)
	require.NoError(t, err)
	assert.Equal(t, int64(5), used, "rejected share writes no row")

	var profile models.Profile
	require.NoError(t, db.Where("id = ?", user).Take(&profile).Error, "profile row is ensured")
}

func TestPlaylistRepository_CreateWithQuotaConcurrent(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()
	user := uuid.New()
	windowStart := time.Now().UTC().Add(-time.Hour)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := &models.Playlist{UserID: user, Emotion: "Calm", Links: models.Links{"https://gaana.com/x"}}
			if err := repo.CreateWithQuota(ctx, p, 5, windowStart); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, created)
	used, err := repo.CountSince(ctx, user, windowStart)
	require.NoError(t, err)
	assert.Equal(t, int64(5), used)
}

func TestPlaylistRepository_UpdateAndDeleteCascade(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlaylistRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	p := seedPlaylist(t, db, owner, "Sad", time.Now())
	other := seedPlaylist(t, db, owner, "Calm", time.Now())
	root := seedComment(t, db, p.ID, owner, nil, time.Now())
	reply := seedComment(t, db, p.ID, uuid.New(), &root.ID, time.Now())
	keep := seedComment(t, db, other.ID, owner, nil, time.Now())

	_, err := likes.TogglePlaylist(ctx, owner, p.ID)
	require.NoError(t, err)
	_, err = likes.ToggleComment(ctx, owner, reply.ID)
	require.NoError(t, err)

	tagline := "rainy day"
	p.Emotion = "Melancholy"
	p.Tagline = &tagline
	p.Links = models.Links{"https://music.apple.com/a", "https://soundcloud.com/b"}
	require.NoError(t, repo.Update(ctx, &p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Melancholy", got.Emotion)
	require.NotNil(t, got.Tagline)
	assert.Equal(t, "rainy day", *got.Tagline)
	assert.Len(t, got.Links, 2)

	assert.True(t, IsNotFound(repo.Update(ctx, &models.Playlist{ID: uuid.New()})))

	require.NoError(t, repo.Delete(ctx, p.ID))

	var n int64
	db.Model(&models.Comment{}).Where("playlist_id = ?", p.ID).Count(&n)
	assert.Zero(t, n, "comments cascade")
	db.Model(&models.PlaylistLike{}).Where("playlist_id = ?", p.ID).Count(&n)
	assert.Zero(t, n, "playlist likes cascade")
	db.Model(&models.CommentLike{}).Where("comment_id = ?", reply.ID).Count(&n)
	assert.Zero(t, n, "comment likes cascade")
	db.Model(&models.Comment{}).Where("id = ?", keep.ID).Count(&n)
	assert.Equal(t, int64(1), n, "other playlists untouched")

	assert.True(t, IsNotFound(repo.Delete(ctx, p.ID)))
}

func TestPlaylistRepository_DashboardLists(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	me := uuid.New()
	author := uuid.New()
	a := seedPlaylist(t, db, author, "A", now.Add(-3*time.Hour))
	b := seedPlaylist(t, db, author, "B", now.Add(-2*time.Hour))
	mine := seedPlaylist(t, db, me, "Mine", now.Add(-time.Hour))

	require.NoError(t, db.Create(&models.PlaylistLike{UserID: me, PlaylistID: b.ID, CreatedAt: now.Add(-10 * time.Minute)}).Error)
	require.NoError(t, db.Create(&models.PlaylistLike{UserID: me, PlaylistID: a.ID, CreatedAt: now.Add(-5 * time.Minute)}).Error)

	seedComment(t, db, a.ID, me, nil, now.Add(-50*time.Minute))
	seedComment(t, db, b.ID, me, nil, now.Add(-40*time.Minute))
	seedComment(t, db, a.ID, me, nil, now.Add(-30*time.Minute))
	seedComment(t, db, mine.ID, author, nil, now)

	liked, err := repo.ListLikedBy(ctx, me, 50)
	require.NoError(t, err)
	require.Len(t, liked, 2)
	assert.Equal(t, a.ID, liked[0].ID, "most recently liked first")
	assert.Equal(t, b.ID, liked[1].ID)

	commented, err := repo.ListCommentedBy(ctx, me, 50)
	require.NoError(t, err)
	require.Len(t, commented, 2, "deduplicated")
	assert.Equal(t, a.ID, commented[0].ID, "ordered by my latest comment")
	assert.Equal(t, int64(2), commented[0].Comments)

	posts, err := repo.ListByUser(ctx, me, 50)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, mine.ID, posts[0].ID)
}

func TestPlaylistRepository_EmotionsSince(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlaylistRepository(db)
	now := time.Now().UTC()
	user := uuid.New()

	seedPlaylist(t, db, user, "Ancient", now.Add(-40*24*time.Hour))
	seedPlaylist(t, db, user, "Sad", now.Add(-3*time.Hour))
	seedPlaylist(t, db, user, "Happy", now.Add(-2*time.Hour))
	seedPlaylist(t, db, uuid.New(), "Other", now.Add(-time.Hour))

	got, err := repo.EmotionsSince(context.Background(), user, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"Sad", "Happy"}, got)
}
