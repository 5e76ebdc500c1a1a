package service

import (
	"context"
	"errors"

	"moodmate/internal/featureflags"
	"moodmate/internal/models"
	"moodmate/internal/mood"

	"github.com/google/uuid"
)

// TextAnalyzer detects a mood from free text.
type TextAnalyzer interface {
	Analyze(ctx context.Context, text string) (*models.MoodResult, error)
}

// ImageClassifier detects a mood from a base64 image.
type ImageClassifier interface {
	Predict(ctx context.Context, imageBase64 string) (*models.MoodResult, error)
}

// FlagChecker evaluates feature flags.
type FlagChecker interface {
	Enabled(name string, userID uuid.UUID) bool
}

// MoodService proxies the mood detection upstreams and maps their
// failures onto API errors.
type MoodService struct {
	text  TextAnalyzer
	image ImageClassifier
	flags FlagChecker
}

func NewMoodService(text TextAnalyzer, image ImageClassifier, flags FlagChecker) *MoodService {
	return &MoodService{text: text, image: image, flags: flags}
}

// AnalyzeText detects a mood from text input.
func (s *MoodService) AnalyzeText(ctx context.Context, text string) (*models.MoodResult, error) {
	res, err := s.text.Analyze(ctx, text)
	if err != nil {
		if errors.Is(err, mood.ErrEmptyInput) {
			return nil, models.NewValidationError("Text input is required")
		}
		if errors.Is(err, mood.ErrMissingAPIKey) {
			return nil, &models.AppError{Code: models.CodeInternal, Message: "Server configuration error: Missing API Key"}
		}
		return nil, upstreamError("Mood analysis", err)
	}
	return res, nil
}

// PredictImage detects a mood from an image when the image_mood flag is on
// for the viewer.
func (s *MoodService) PredictImage(ctx context.Context, viewer uuid.UUID, imageBase64 string) (*models.MoodResult, error) {
	if s.image == nil || s.flags == nil || !s.flags.Enabled(featureflags.ImageMood, viewer) {
		return nil, &models.AppError{Code: models.CodeNotFound, Message: "Image mood detection is not available"}
	}
	res, err := s.image.Predict(ctx, imageBase64)
	if err != nil {
		if errors.Is(err, mood.ErrEmptyInput) {
			return nil, models.NewValidationError("No image provided")
		}
		return nil, upstreamError("Emotion classifier", err)
	}
	return res, nil
}

func upstreamError(service string, err error) error {
	var rejected *mood.RejectedError
	if errors.As(err, &rejected) {
		return models.NewValidationError(rejected.Message)
	}
	return models.NewUpstreamError(service, err)
}
