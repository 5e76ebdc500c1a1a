package service

import (
	"context"
	"testing"

	"moodmate/internal/models"
	"moodmate/internal/notifications"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeService_TogglePlaylist(t *testing.T) {
	t.Parallel()

	playlistID := uuid.New()
	user := uuid.New()
	liked := map[uuid.UUID]bool{}

	likes := noopLikeRepo()
	likes.togglePlaylistFn = func(_ context.Context, u, p uuid.UUID) (models.LikeState, error) {
		liked[u] = !liked[u]
		var count int64
		for _, v := range liked {
			if v {
				count++
			}
		}
		return models.LikeState{Liked: liked[u], Likes: count}, nil
	}
	playlists := noopPlaylistRepo()
	playlists.existsFn = func(_ context.Context, id uuid.UUID) (bool, error) { return id == playlistID, nil }
	events := &eventRecorder{}
	svc := NewLikeService(likes, playlists, noopCommentRepo(), events)
	ctx := context.Background()

	state, err := svc.TogglePlaylist(ctx, user, playlistID)
	require.NoError(t, err)
	assert.Equal(t, models.LikeState{Liked: true, Likes: 1}, state)

	state, err = svc.TogglePlaylist(ctx, user, playlistID)
	require.NoError(t, err)
	assert.Equal(t, models.LikeState{Liked: false, Likes: 0}, state)

	_, err = svc.TogglePlaylist(ctx, user, uuid.New())
	assertAppError(t, err, models.CodeNotFound)

	assert.Equal(t, []string{notifications.EventVibeLikeChanged, notifications.EventVibeLikeChanged}, events.types())
	payload, ok := events.events[0].Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, playlistID, payload["id"])
	assert.Equal(t, int64(1), payload["likes"])
}

func TestLikeService_SetAndComments(t *testing.T) {
	t.Parallel()

	commentID := uuid.New()
	var setTo []bool

	likes := noopLikeRepo()
	likes.setPlaylistFn = func(_ context.Context, _, _ uuid.UUID, liked bool) (models.LikeState, error) {
		setTo = append(setTo, liked)
		return models.LikeState{Liked: liked, Likes: 3}, nil
	}
	likes.toggleCommentFn = func(_ context.Context, _, _ uuid.UUID) (models.LikeState, error) {
		return models.LikeState{Liked: true, Likes: 1}, nil
	}
	likes.setCommentFn = func(_ context.Context, _, _ uuid.UUID, liked bool) (models.LikeState, error) {
		return models.LikeState{Liked: liked}, nil
	}
	comments := noopCommentRepo()
	comments.existsFn = func(_ context.Context, id uuid.UUID) (bool, error) { return id == commentID, nil }
	events := &eventRecorder{}
	svc := NewLikeService(likes, noopPlaylistRepo(), comments, events)
	ctx := context.Background()
	user := uuid.New()

	state, err := svc.SetPlaylist(ctx, user, uuid.New(), true)
	require.NoError(t, err)
	assert.True(t, state.Liked)
	_, err = svc.SetPlaylist(ctx, user, uuid.New(), false)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, setTo)

	state, err = svc.ToggleComment(ctx, user, commentID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.Likes)

	state, err = svc.SetComment(ctx, user, commentID, false)
	require.NoError(t, err)
	assert.False(t, state.Liked)

	_, err = svc.ToggleComment(ctx, user, uuid.New())
	assertAppError(t, err, models.CodeNotFound)
	_, err = svc.SetComment(ctx, user, uuid.New(), true)
	assertAppError(t, err, models.CodeNotFound)

	// Comment likes do not touch the feed.
	assert.Equal(t, []string{notifications.EventVibeLikeChanged, notifications.EventVibeLikeChanged}, events.types())
}
