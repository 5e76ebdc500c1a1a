package service

import (
	"context"
	"testing"
	"time"

	"moodmate/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupEmotions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []models.EmotionCount
	}{
		{"empty", nil, []models.EmotionCount{}},
		{
			"first seen order",
			[]string{"Calm", "Happy", "Calm", "Sad", "Happy", "Calm"},
			[]models.EmotionCount{{Name: "Calm", Count: 3}, {Name: "Happy", Count: 2}, {Name: "Sad", Count: 1}},
		},
		{
			"case sensitive",
			[]string{"happy", "Happy", "happy"},
			[]models.EmotionCount{{Name: "happy", Count: 2}, {Name: "Happy", Count: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GroupEmotions(tt.in))
		})
	}
}

func TestAnalyticsService_EmotionCounts(t *testing.T) {
	t.Parallel()

	user := uuid.New()
	var since time.Time
	playlists := noopPlaylistRepo()
	playlists.emotionsSinceFn = func(_ context.Context, userID uuid.UUID, s time.Time) ([]string, error) {
		assert.Equal(t, user, userID)
		since = s
		return []string{"Energetic", "Energetic", "Calm"}, nil
	}
	svc := NewAnalyticsService(playlists)
	now := fixedNow()

	counts, err := svc.EmotionCounts(context.Background(), user, now, 0)
	require.NoError(t, err)
	assert.Equal(t, []models.EmotionCount{{Name: "Energetic", Count: 2}, {Name: "Calm", Count: 1}}, counts)
	assert.Equal(t, now.Add(-30*24*time.Hour), since)

	_, err = svc.EmotionCounts(context.Background(), user, now, 7)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-7*24*time.Hour), since)

	for _, days := range []int{-1, MaxAnalyticsDays + 1} {
		_, err := svc.EmotionCounts(context.Background(), user, now, days)
		assertAppError(t, err, models.CodeValidation)
	}
}
