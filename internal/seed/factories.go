// Package seed provides helpers to create demo data for the community
// tables. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"moodmate/internal/models"
	"moodmate/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Emotions are the moods generated vibes are tagged with.
var Emotions = []string{
	"Happy", "Sad", "Calm", "Energetic", "Melancholic",
	"Romantic", "Angry", "Anxious", "Nostalgic", "Excited",
}

const maxTaglineRunes = 60

// Factory builds community entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	now   func() time.Time

	// shares per user in the current UTC month. Kept strictly below the
	// quota: the store trigger rejects any insert once a user reaches it.
	monthly map[uuid.UUID]int
}

// NewFactory creates a new Factory bound to the provided Gorm DB. db may be
// nil in DryRun mode.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	opts = opts.withDefaults()
	return &Factory{
		db:      db,
		opts:    opts,
		faker:   gofakeit.New(opts.RandSeed),
		now:     func() time.Time { return time.Now().UTC() },
		monthly: make(map[uuid.UUID]int),
	}
}

func (f *Factory) create(ctx context.Context, value any) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.WithContext(ctx).Create(value).Error
}

// BuildProfile constructs a profile without persisting it.
func (f *Factory) BuildProfile(overrides ...func(*models.Profile)) *models.Profile {
	id := uuid.New()
	p := &models.Profile{
		ID:        id,
		FullName:  f.faker.Name(),
		AvatarURL: "https://i.pravatar.cc/150?u=" + id.String(),
	}
	for _, override := range overrides {
		override(p)
	}
	return p
}

// CreateProfile builds and persists a profile.
func (f *Factory) CreateProfile(ctx context.Context, overrides ...func(*models.Profile)) (*models.Profile, error) {
	p := f.BuildProfile(overrides...)
	if err := f.create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// BuildPlaylist constructs a vibe shared by owner without persisting it.
// created_at is spread over MaxDays, pushed into earlier months once owner
// has used up the monthly quota.
func (f *Factory) BuildPlaylist(owner uuid.UUID, overrides ...func(*models.Playlist)) *models.Playlist {
	p := &models.Playlist{
		ID:      uuid.New(),
		UserID:  owner,
		Emotion: f.faker.RandomString(Emotions),
		Links:   f.links(f.faker.Number(1, 3)),
	}
	if f.faker.Number(1, 10) <= 7 {
		tagline := strings.TrimSpace(truncateRunes(f.faker.HipsterSentence(f.faker.Number(2, 5)), maxTaglineRunes))
		p.Tagline = &tagline
	}
	for _, override := range overrides {
		override(p)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = f.createdAt(owner)
	} else if !p.CreatedAt.Before(monthStart(f.now())) {
		f.monthly[owner]++
	}
	p.UpdatedAt = p.CreatedAt
	return p
}

// CreatePlaylist builds and persists a vibe.
func (f *Factory) CreatePlaylist(ctx context.Context, owner uuid.UUID, overrides ...func(*models.Playlist)) (*models.Playlist, error) {
	p := f.BuildPlaylist(owner, overrides...)
	if err := f.create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateComment persists a comment by author on playlist. parent, when set,
// must belong to the same playlist; the reply is dated after it.
func (f *Factory) CreateComment(ctx context.Context, author uuid.UUID, playlist *models.Playlist, parent *models.Comment, overrides ...func(*models.Comment)) (*models.Comment, error) {
	after := playlist.CreatedAt
	c := &models.Comment{
		ID:         uuid.New(),
		PlaylistID: playlist.ID,
		UserID:     author,
		Content:    f.faker.Sentence(f.faker.Number(3, 16)),
	}
	if parent != nil {
		if parent.PlaylistID != playlist.ID {
			return nil, fmt.Errorf("parent comment %s belongs to another vibe", parent.ID)
		}
		c.ParentID = &parent.ID
		after = parent.CreatedAt
	}
	c.CreatedAt = f.between(after, f.now())
	for _, override := range overrides {
		override(c)
	}
	if err := f.create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateLike records user liking playlistID. It reports false when the like
// already exists.
func (f *Factory) CreateLike(ctx context.Context, user, playlistID uuid.UUID) (bool, error) {
	return f.createUnique(ctx, &models.PlaylistLike{UserID: user, PlaylistID: playlistID})
}

// CreateCommentLike records user liking commentID. It reports false when the
// like already exists.
func (f *Factory) CreateCommentLike(ctx context.Context, user, commentID uuid.UUID) (bool, error) {
	return f.createUnique(ctx, &models.CommentLike{UserID: user, CommentID: commentID})
}

func (f *Factory) createUnique(ctx context.Context, value any) (bool, error) {
	if err := f.create(ctx, value); err != nil {
		if repository.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// links returns n allow-listed streaming links.
func (f *Factory) links(n int) models.Links {
	out := make(models.Links, 0, n)
	for i := 0; i < n; i++ {
		switch f.faker.Number(0, 3) {
		case 0:
			out = append(out, "https://open.spotify.com/playlist/"+f.faker.LetterN(22))
		case 1:
			out = append(out, "https://www.youtube.com/watch?v="+f.faker.LetterN(11))
		case 2:
			out = append(out, fmt.Sprintf("https://music.apple.com/us/playlist/%s/pl.%s",
				f.faker.Word(), f.faker.LetterN(32)))
		default:
			out = append(out, fmt.Sprintf("https://soundcloud.com/%s/sets/%s",
				f.faker.Username(), f.faker.Word()))
		}
	}
	return out
}

func (f *Factory) createdAt(owner uuid.UUID) time.Time {
	now := f.now()
	start := monthStart(now)
	t := now.Add(-time.Duration(f.faker.Number(0, f.opts.MaxDays*24*60)) * time.Minute)
	if !t.Before(start) {
		if f.monthly[owner] < f.opts.MonthlyQuota-1 {
			f.monthly[owner]++
			return t
		}
		t = start.Add(-time.Duration(f.faker.Number(1, 28*24*60)) * time.Minute)
	}
	return t
}

// between returns a random instant in [from, to], or from when to is earlier.
func (f *Factory) between(from, to time.Time) time.Time {
	span := to.Sub(from)
	if span <= time.Minute {
		return from
	}
	return from.Add(time.Duration(f.faker.Number(0, int(span/time.Minute))) * time.Minute)
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
