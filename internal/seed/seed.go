package seed

import (
	"context"
	"fmt"
	"log/slog"

	"moodmate/internal/database"
	"moodmate/internal/middleware"
	"moodmate/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers int
	NumVibes int
	// MaxComments is the upper bound of comments per vibe; about a third of
	// them are replies.
	MaxComments  int
	MaxLikes     int
	MaxDays      int
	MonthlyQuota int
	ShouldClean  bool
	// DryRun builds every entity without touching the database.
	DryRun   bool
	RandSeed int64
}

func (o Options) withDefaults() Options {
	if o.MaxDays <= 0 {
		o.MaxDays = 90
	}
	if o.MonthlyQuota <= 0 {
		o.MonthlyQuota = 5
	}
	if o.MaxComments < 0 {
		o.MaxComments = 0
	}
	if o.MaxLikes < 0 {
		o.MaxLikes = 0
	}
	return o
}

// Summary counts what a run created.
type Summary struct {
	Profiles      int
	Vibes         int
	Comments      int
	PlaylistLikes int
	CommentLikes  int
}

// Seeder fills the community tables with fixture and generated data.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a seeder. db may be nil when opts.DryRun is set.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	opts = opts.withDefaults()
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// Seed populates the database with demo data
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	return NewSeeder(db, opts).Run(ctx)
}

// Run creates profiles, then vibes (curated fixtures first), then comments
// and likes on them.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	if s.opts.NumUsers <= 0 {
		return nil, fmt.Errorf("seed needs at least one user")
	}
	log := middleware.Logger.With(slog.Bool("dry_run", s.opts.DryRun))
	log.InfoContext(ctx, "starting database seeding",
		slog.Int("users", s.opts.NumUsers), slog.Int("vibes", s.opts.NumVibes))

	if s.opts.ShouldClean && !s.opts.DryRun {
		if err := Clean(ctx, s.db); err != nil {
			return nil, fmt.Errorf("clean existing data: %w", err)
		}
	}

	summary := &Summary{}
	users, err := s.profiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create profiles: %w", err)
	}
	summary.Profiles = len(users)

	vibes, err := s.vibes(ctx, users)
	if err != nil {
		return nil, fmt.Errorf("failed to create vibes: %w", err)
	}
	summary.Vibes = len(vibes)

	for _, v := range vibes {
		if err := s.engage(ctx, v, users, summary); err != nil {
			return nil, fmt.Errorf("failed to seed engagement on %s: %w", v.ID, err)
		}
	}

	log.InfoContext(ctx, "database seeding completed",
		slog.Int("profiles", summary.Profiles),
		slog.Int("vibes", summary.Vibes),
		slog.Int("comments", summary.Comments),
		slog.Int("playlist_likes", summary.PlaylistLikes),
		slog.Int("comment_likes", summary.CommentLikes))
	return summary, nil
}

func (s *Seeder) profiles(ctx context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		p, err := s.factory.CreateProfile(ctx)
		if err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (s *Seeder) vibes(ctx context.Context, users []uuid.UUID) ([]*models.Playlist, error) {
	fixtures, err := LoadFixtures()
	if err != nil {
		return nil, err
	}
	out := make([]*models.Playlist, 0, s.opts.NumVibes)
	for i := 0; i < s.opts.NumVibes; i++ {
		owner := users[i%len(users)]
		var overrides []func(*models.Playlist)
		if i < len(fixtures) {
			fx := fixtures[i]
			overrides = append(overrides, func(p *models.Playlist) {
				p.Emotion = fx.Emotion
				p.Links = models.Links(fx.Links)
				p.Tagline = nil
				if fx.Tagline != "" {
					tagline := fx.Tagline
					p.Tagline = &tagline
				}
			})
		}
		p, err := s.factory.CreatePlaylist(ctx, owner, overrides...)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// engage adds comments, replies and likes to one vibe.
func (s *Seeder) engage(ctx context.Context, v *models.Playlist, users []uuid.UUID, summary *Summary) error {
	f := s.factory
	var comments []*models.Comment
	for i, n := 0, f.faker.Number(0, s.opts.MaxComments); i < n; i++ {
		var parent *models.Comment
		if len(comments) > 0 && f.faker.Number(1, 3) == 1 {
			parent = comments[f.faker.Number(0, len(comments)-1)]
		}
		c, err := f.CreateComment(ctx, users[f.faker.Number(0, len(users)-1)], v, parent)
		if err != nil {
			return err
		}
		comments = append(comments, c)
	}
	summary.Comments += len(comments)

	for i, n := 0, f.faker.Number(0, s.opts.MaxLikes); i < n; i++ {
		created, err := f.CreateLike(ctx, users[f.faker.Number(0, len(users)-1)], v.ID)
		if err != nil {
			return err
		}
		if created {
			summary.PlaylistLikes++
		}
	}
	for _, c := range comments {
		if f.faker.Bool() {
			continue
		}
		created, err := f.CreateCommentLike(ctx, users[f.faker.Number(0, len(users)-1)], c.ID)
		if err != nil {
			return err
		}
		if created {
			summary.CommentLikes++
		}
	}
	return nil
}

// Clean removes every community row, children first.
func Clean(ctx context.Context, db *gorm.DB) error {
	middleware.Logger.InfoContext(ctx, "clearing existing community data")
	tables := database.PersistentModels()
	for i := len(tables) - 1; i >= 0; i-- {
		err := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(tables[i]).Error
		if err != nil {
			return fmt.Errorf("clear %T: %w", tables[i], err)
		}
	}
	return nil
}
