package repository

import (
	"context"
	"testing"
	"time"

	"moodmate/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_ListByPlaylistOldestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	p := seedPlaylist(t, db, uuid.New(), "Happy", now)
	second := seedComment(t, db, p.ID, uuid.New(), nil, now.Add(-time.Minute))
	first := seedComment(t, db, p.ID, uuid.New(), nil, now.Add(-time.Hour))
	reply := seedComment(t, db, p.ID, uuid.New(), &first.ID, now)
	seedComment(t, db, seedPlaylist(t, db, uuid.New(), "Other", now).ID, uuid.New(), nil, now)

	_, err := likes.ToggleComment(ctx, uuid.New(), first.ID)
	require.NoError(t, err)

	got, err := repo.ListByPlaylist(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID, reply.ID}, []uuid.UUID{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, int64(1), got[0].LikesCount)
	require.NotNil(t, got[2].ParentID)
	assert.Equal(t, first.ID, *got[2].ParentID)
}

func TestCommentRepository_GetAndDeleteMany(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	p := seedPlaylist(t, db, uuid.New(), "Happy", time.Now())
	root := seedComment(t, db, p.ID, uuid.New(), nil, time.Now())
	child := seedComment(t, db, p.ID, uuid.New(), &root.ID, time.Now())
	keep := seedComment(t, db, p.ID, uuid.New(), nil, time.Now())
	_, err := likes.ToggleComment(ctx, uuid.New(), child.ID)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.PlaylistID)

	require.NoError(t, repo.DeleteMany(ctx, []uuid.UUID{root.ID, child.ID}))

	_, err = repo.GetByID(ctx, root.ID)
	assert.True(t, IsNotFound(err))
	ok, err := repo.Exists(ctx, keep.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	var n int64
	db.Model(&models.CommentLike{}).Where("comment_id = ?", child.ID).Count(&n)
	assert.Zero(t, n)

	assert.True(t, IsNotFound(repo.DeleteMany(ctx, []uuid.UUID{uuid.New()})))
	assert.NoError(t, repo.DeleteMany(ctx, nil))
}
