// Package service implements the community operations on top of the
// repositories: validation, ownership checks, joins, caching and events.
package service

import (
	"context"
	"log/slog"
	"time"

	"moodmate/internal/middleware"
	"moodmate/internal/models"
	"moodmate/internal/repository"
	"moodmate/internal/thumbnail"

	"github.com/google/uuid"
)

// EventPublisher delivers community events to realtime subscribers.
// notifications.Notifier implements it.
type EventPublisher interface {
	PublishCommunityEvent(ctx context.Context, eventType string, payload any) error
}

// publish sends an event and logs failures. Events never fail a request.
func publish(ctx context.Context, events EventPublisher, eventType string, payload any) {
	if events == nil {
		return
	}
	if err := events.PublishCommunityEvent(ctx, eventType, payload); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish community event",
			slog.String("event", eventType), slog.String("error", err.Error()))
	}
}

// MonthStart returns 00:00 UTC on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// enricher performs the manual joins shared by every playlist and comment
// read: owner profiles in one batch and the viewer's like-set.
type enricher struct {
	profiles repository.ProfileRepository
	likes    repository.LikeRepository
}

// profileMap fetches the profiles of ids. A failure is logged and yields an
// empty map so callers can still return the items.
func (e enricher) profileMap(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]*models.Profile {
	out := make(map[uuid.UUID]*models.Profile, len(ids))
	if len(ids) == 0 || e.profiles == nil {
		return out
	}
	profiles, err := e.profiles.GetByIDs(ctx, ids)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "profile batch fetch failed, returning items without profiles",
			slog.Int("count", len(ids)), slog.String("error", err.Error()))
		return out
	}
	for i := range profiles {
		out[profiles[i].ID] = &profiles[i]
	}
	return out
}

func distinct(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// attachProfiles sets Profile and Thumbnails on every playlist.
func (e enricher) attachProfiles(ctx context.Context, items []models.Playlist) {
	owners := make([]uuid.UUID, 0, len(items))
	for _, p := range items {
		owners = append(owners, p.UserID)
	}
	profiles := e.profileMap(ctx, distinct(owners))
	for i := range items {
		items[i].Profile = profiles[items[i].UserID]
	}
	thumbnail.Fill(items)
}

// applyViewerLikes sets IsLiked from the viewer's like-set restricted to items.
func (e enricher) applyViewerLikes(ctx context.Context, viewer uuid.UUID, items []models.Playlist) error {
	for i := range items {
		items[i].IsLiked = false
	}
	if viewer == uuid.Nil || len(items) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.ID)
	}
	liked, err := e.likes.LikedPlaylistIDs(ctx, viewer, ids)
	if err != nil {
		return err
	}
	set := idSet(liked)
	for i := range items {
		_, items[i].IsLiked = set[items[i].ID]
	}
	return nil
}

func (e enricher) playlists(ctx context.Context, viewer uuid.UUID, items []models.Playlist) error {
	e.attachProfiles(ctx, items)
	return e.applyViewerLikes(ctx, viewer, items)
}

func (e enricher) comments(ctx context.Context, viewer uuid.UUID, items []models.Comment) error {
	authors := make([]uuid.UUID, 0, len(items))
	for _, c := range items {
		authors = append(authors, c.UserID)
	}
	profiles := e.profileMap(ctx, distinct(authors))
	for i := range items {
		items[i].Profile = profiles[items[i].UserID]
	}

	if viewer == uuid.Nil || len(items) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, c := range items {
		ids = append(ids, c.ID)
	}
	liked, err := e.likes.LikedCommentIDs(ctx, viewer, ids)
	if err != nil {
		return err
	}
	set := idSet(liked)
	for i := range items {
		_, items[i].IsLiked = set[items[i].ID]
	}
	return nil
}

// ownerProfile loads one profile, tolerating its absence.
func (e enricher) ownerProfile(ctx context.Context, id uuid.UUID) *models.Profile {
	if e.profiles == nil {
		return nil
	}
	profile, err := e.profiles.GetByID(ctx, id)
	if err != nil {
		if !repository.IsNotFound(err) {
			middleware.Logger.WarnContext(ctx, "profile fetch failed",
				slog.String("profile_id", id.String()), slog.String("error", err.Error()))
		}
		return nil
	}
	return profile
}
