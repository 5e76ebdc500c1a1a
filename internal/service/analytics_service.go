package service

import (
	"context"
	"fmt"
	"time"

	"moodmate/internal/models"
	"moodmate/internal/repository"

	"github.com/google/uuid"
)

const (
	DefaultAnalyticsDays = 30
	MaxAnalyticsDays     = 365
)

// AnalyticsService aggregates a user's shared emotions over time.
type AnalyticsService struct {
	playlists repository.PlaylistRepository
}

// NewAnalyticsService creates an AnalyticsService over the playlist store.
func NewAnalyticsService(playlists repository.PlaylistRepository) *AnalyticsService {
	return &AnalyticsService{playlists: playlists}
}

// EmotionCounts tallies the user's shared emotions over the last days days
// ending at now. Zero days means the default window.
func (s *AnalyticsService) EmotionCounts(ctx context.Context, userID uuid.UUID, now time.Time, days int) ([]models.EmotionCount, error) {
	if days == 0 {
		days = DefaultAnalyticsDays
	}
	if days < 1 || days > MaxAnalyticsDays {
		return nil, models.NewValidationError(fmt.Sprintf("days must be between 1 and %d", MaxAnalyticsDays))
	}
	emotions, err := s.playlists.EmotionsSince(ctx, userID, now.Add(-time.Duration(days)*24*time.Hour))
	if err != nil {
		return nil, err
	}
	return GroupEmotions(emotions), nil
}

// GroupEmotions counts exact (case-sensitive) emotion labels and returns
// them in first-seen order.
func GroupEmotions(emotions []string) []models.EmotionCount {
	out := []models.EmotionCount{}
	index := make(map[string]int, len(emotions))
	for _, e := range emotions {
		if i, ok := index[e]; ok {
			out[i].Count++
			continue
		}
		index[e] = len(out)
		out = append(out, models.EmotionCount{Name: e, Count: 1})
	}
	return out
}
