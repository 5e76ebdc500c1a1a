package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"moodmate/internal/cache"
	"moodmate/internal/models"
	"moodmate/internal/notifications"
	"moodmate/internal/observability"
	"moodmate/internal/repository"
	"moodmate/internal/thumbnail"
	"moodmate/internal/validation"

	"github.com/google/uuid"
)

// DefaultMonthlyQuota is the number of shares allowed per calendar month.
const DefaultMonthlyQuota = 5

// VibeService serves the community feed and playlist mutations.
type VibeService struct {
	playlists repository.PlaylistRepository
	enrich    enricher
	events    EventPublisher
	quota     int
	feedTTL   time.Duration
	now       func() time.Time
}

// VibeOptions tunes VibeService.
type VibeOptions struct {
	MonthlyQuota int
	// FeedCacheTTL of zero disables the anonymous feed cache.
	FeedCacheTTL time.Duration
}

// FeedQuery selects a feed page.
type FeedQuery struct {
	Sort  string
	Query string
	Limit int
}

// ShareInput is the payload of a new vibe.
type ShareInput struct {
	UserID  uuid.UUID
	Emotion string
	Tagline *string
	Links   []string
}

// UpdateVibeInput replaces the editable fields of an existing vibe.
type UpdateVibeInput struct {
	UserID     uuid.UUID
	PlaylistID uuid.UUID
	Emotion    string
	Tagline    *string
	Links      []string
}

func NewVibeService(
	playlists repository.PlaylistRepository,
	profiles repository.ProfileRepository,
	likes repository.LikeRepository,
	events EventPublisher,
	opts VibeOptions,
) *VibeService {
	if opts.MonthlyQuota <= 0 {
		opts.MonthlyQuota = DefaultMonthlyQuota
	}
	return &VibeService{
		playlists: playlists,
		enrich:    enricher{profiles: profiles, likes: likes},
		events:    events,
		quota:     opts.MonthlyQuota,
		feedTTL:   opts.FeedCacheTTL,
		now:       time.Now,
	}
}

// MonthlyQuota returns the configured share limit.
func (s *VibeService) MonthlyQuota() int { return s.quota }

// Feed returns a page of community playlists. viewer may be uuid.Nil.
// The latest feed without a search term is served through the cache; the
// viewer's likes are always applied afterwards.
func (s *VibeService) Feed(ctx context.Context, viewer uuid.UUID, q FeedQuery) ([]models.Playlist, error) {
	sortMode := strings.ToLower(strings.TrimSpace(q.Sort))
	switch sortMode {
	case "":
		sortMode = repository.SortLatest
	case repository.SortLatest, repository.SortPopular, repository.SortTrending:
	default:
		return nil, models.NewValidationError("sort must be one of latest, popular, trending")
	}
	limit := q.Limit
	if limit == 0 {
		limit = repository.MaxFeedLimit
	}
	if limit < 0 || limit > repository.MaxFeedLimit {
		return nil, models.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", repository.MaxFeedLimit))
	}
	query := strings.TrimSpace(q.Query)

	opts := repository.ListOptions{Sort: sortMode, Query: query, Limit: limit, Now: s.now()}
	var items []models.Playlist
	fetch := func() error {
		var err error
		items, err = s.playlists.List(ctx, opts)
		if err != nil {
			return err
		}
		s.enrich.attachProfiles(ctx, items)
		return nil
	}

	var err error
	if sortMode == repository.SortLatest && query == "" {
		err = cache.Aside(ctx, cache.FamilyFeed, cache.FeedKey(sortMode, limit), &items, s.feedTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Playlist{}
	}

	if err := s.enrich.applyViewerLikes(ctx, viewer, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID loads one vibe with its owner profile and the viewer's like state.
func (s *VibeService) GetByID(ctx context.Context, id, viewer uuid.UUID) (*models.Playlist, error) {
	p, err := s.playlists.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Vibe", id)
		}
		return nil, err
	}
	p.Profile = s.enrich.ownerProfile(ctx, p.UserID)

	single := []models.Playlist{*p}
	if err := s.enrich.applyViewerLikes(ctx, viewer, single); err != nil {
		return nil, err
	}
	p.IsLiked = single[0].IsLiked
	thumbnail.ForPlaylist(p)
	return p, nil
}

type vibeFields struct {
	Emotion string   `json:"emotion" validate:"required,max=50"`
	Tagline string   `json:"tagline" validate:"max=60"`
	Links   []string `json:"links" validate:"min=1,max=5,dive,musiclink"`
}

// normalizeVibe trims and validates a vibe payload. Blank links are dropped
// before counting.
func normalizeVibe(emotion string, tagline *string, links []string) (string, *string, models.Links, error) {
	fields := vibeFields{Emotion: strings.TrimSpace(emotion)}
	if tagline != nil {
		fields.Tagline = validation.PlainText(*tagline)
	}
	for _, l := range links {
		if l = strings.TrimSpace(l); l != "" {
			fields.Links = append(fields.Links, l)
		}
	}
	if err := validation.Struct(fields); err != nil {
		return "", nil, nil, err
	}

	var outTagline *string
	if fields.Tagline != "" {
		t := fields.Tagline
		outTagline = &t
	}
	return fields.Emotion, outTagline, models.Links(fields.Links), nil
}

// Share validates and stores a new vibe, enforcing the monthly quota.
func (s *VibeService) Share(ctx context.Context, in ShareInput) (*models.Playlist, error) {
	emotion, tagline, links, err := normalizeVibe(in.Emotion, in.Tagline, in.Links)
	if err != nil {
		observability.VibeShares.WithLabelValues("invalid").Inc()
		return nil, err
	}

	now := s.now().UTC()
	p := &models.Playlist{
		UserID:    in.UserID,
		Emotion:   emotion,
		Tagline:   tagline,
		Links:     links,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.playlists.CreateWithQuota(ctx, p, s.quota, MonthStart(now)); err != nil {
		if errors.Is(err, repository.ErrQuotaExceeded) {
			observability.VibeShares.WithLabelValues("quota_exceeded").Inc()
			return nil, models.NewQuotaExceededError(s.quota)
		}
		return nil, fmt.Errorf("create vibe: %w", err)
	}
	observability.VibeShares.WithLabelValues("created").Inc()

	created, err := s.GetByID(ctx, p.ID, in.UserID)
	if err != nil {
		return nil, err
	}
	cache.InvalidateFeed(ctx)
	publish(ctx, s.events, notifications.EventVibeCreated, created)
	return created, nil
}

// Update replaces emotion, tagline and links. Only the owner may edit; the
// quota is not re-checked.
func (s *VibeService) Update(ctx context.Context, in UpdateVibeInput) (*models.Playlist, error) {
	emotion, tagline, links, err := normalizeVibe(in.Emotion, in.Tagline, in.Links)
	if err != nil {
		return nil, err
	}

	p, err := s.loadOwned(ctx, in.PlaylistID, in.UserID, "You can only edit your own vibes")
	if err != nil {
		return nil, err
	}
	p.Emotion = emotion
	p.Tagline = tagline
	p.Links = links
	p.UpdatedAt = s.now().UTC()
	if err := s.playlists.Update(ctx, p); err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Vibe", in.PlaylistID)
		}
		return nil, fmt.Errorf("update vibe: %w", err)
	}

	updated, err := s.GetByID(ctx, p.ID, in.UserID)
	if err != nil {
		return nil, err
	}
	cache.InvalidateFeed(ctx)
	publish(ctx, s.events, notifications.EventVibeUpdated, updated)
	return updated, nil
}

// Delete removes a vibe with its comments and likes. Only the owner may delete.
func (s *VibeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.loadOwned(ctx, id, userID, "You can only delete your own vibes"); err != nil {
		return err
	}
	if err := s.playlists.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return models.NewNotFoundError("Vibe", id)
		}
		return fmt.Errorf("delete vibe: %w", err)
	}
	cache.InvalidateFeed(ctx)
	publish(ctx, s.events, notifications.EventVibeDeleted, map[string]any{"id": id})
	return nil
}

// Quota reports how many shares the user has left this month.
func (s *VibeService) Quota(ctx context.Context, userID uuid.UUID) (*models.QuotaStatus, error) {
	start := MonthStart(s.now())
	used, err := s.playlists.CountSince(ctx, userID, start)
	if err != nil {
		return nil, err
	}
	remaining := int64(s.quota) - used
	if remaining < 0 {
		remaining = 0
	}
	return &models.QuotaStatus{
		Used:        used,
		Limit:       s.quota,
		Remaining:   remaining,
		WindowStart: start.Format(time.RFC3339),
		ResetsAt:    start.AddDate(0, 1, 0).Format(time.RFC3339),
	}, nil
}

func (s *VibeService) loadOwned(ctx context.Context, id, userID uuid.UUID, forbidden string) (*models.Playlist, error) {
	p, err := s.playlists.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Vibe", id)
		}
		return nil, err
	}
	if p.UserID != userID {
		return nil, models.NewForbiddenError(forbidden)
	}
	return p, nil
}
