package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"moodmate/internal/featureflags"
	"moodmate/internal/models"
	"moodmate/internal/mood"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type textAnalyzerStub struct {
	analyzeFn func(context.Context, string) (*models.MoodResult, error)
}

func (s textAnalyzerStub) Analyze(ctx context.Context, text string) (*models.MoodResult, error) {
	return s.analyzeFn(ctx, text)
}

type imageClassifierStub struct {
	predictFn func(context.Context, string) (*models.MoodResult, error)
}

func (s imageClassifierStub) Predict(ctx context.Context, img string) (*models.MoodResult, error) {
	return s.predictFn(ctx, img)
}

func failingAnalyzer(err error) textAnalyzerStub {
	return textAnalyzerStub{analyzeFn: func(context.Context, string) (*models.MoodResult, error) { return nil, err }}
}

func TestMoodService_AnalyzeText(t *testing.T) {
	t.Parallel()

	ok := textAnalyzerStub{analyzeFn: func(_ context.Context, text string) (*models.MoodResult, error) {
		return &models.MoodResult{Emotion: "Calm", Confidence: "90%", Songs: []models.Song{}}, nil
	}}
	res, err := NewMoodService(ok, nil, nil).AnalyzeText(context.Background(), "quiet morning")
	require.NoError(t, err)
	assert.Equal(t, "Calm", res.Emotion)

	tests := []struct {
		name    string
		err     error
		code    string
		message string
	}{
		{"empty", mood.ErrEmptyInput, models.CodeValidation, "Text input is required"},
		{"missing key", mood.ErrMissingAPIKey, models.CodeInternal, "Server configuration error: Missing API Key"},
		{"rejected", &mood.RejectedError{Message: "Inappropriate content detected"}, models.CodeValidation, "Inappropriate content detected"},
		{"breaker open", fmt.Errorf("groq: %w", mood.ErrUnavailable), models.CodeUpstreamUnavailable, "Mood analysis is unavailable"},
		{"other", errors.New("status 502"), models.CodeUpstreamUnavailable, "Mood analysis is unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewMoodService(failingAnalyzer(tt.err), nil, nil).AnalyzeText(context.Background(), "x")
			appErr := assertAppError(t, err, tt.code)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestMoodService_PredictImage(t *testing.T) {
	t.Parallel()

	classifier := imageClassifierStub{predictFn: func(_ context.Context, img string) (*models.MoodResult, error) {
		switch img {
		case "":
			return nil, mood.ErrEmptyInput
		case "blurry":
			return nil, &mood.RejectedError{Message: "No face detected"}
		case "down":
			return nil, errors.New("connection refused")
		}
		return &models.MoodResult{Emotion: "Happy", Confidence: "87.34%"}, nil
	}}
	on := featureflags.NewManager(featureflags.ImageMood + "=true")
	off := featureflags.NewManager("")
	viewer := uuid.New()

	res, err := NewMoodService(nil, classifier, on).PredictImage(context.Background(), viewer, "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "87.34%", res.Confidence)

	appErr := assertAppError(t, func() error {
		_, err := NewMoodService(nil, classifier, off).PredictImage(context.Background(), viewer, "aGVsbG8=")
		return err
	}(), models.CodeNotFound)
	assert.Equal(t, "Image mood detection is not available", appErr.Message)

	_, err = NewMoodService(nil, nil, on).PredictImage(context.Background(), viewer, "aGVsbG8=")
	assertAppError(t, err, models.CodeNotFound)

	svc := NewMoodService(nil, classifier, on)
	_, err = svc.PredictImage(context.Background(), viewer, "")
	assert.Equal(t, "No image provided", assertAppError(t, err, models.CodeValidation).Message)
	_, err = svc.PredictImage(context.Background(), viewer, "blurry")
	assert.Equal(t, "No face detected", assertAppError(t, err, models.CodeValidation).Message)
	_, err = svc.PredictImage(context.Background(), viewer, "down")
	assertAppError(t, err, models.CodeUpstreamUnavailable)
}
