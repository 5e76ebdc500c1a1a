package service

import (
	"context"
	"errors"
	"strings"

	"moodmate/internal/cache"
	"moodmate/internal/metadata"
	"moodmate/internal/models"
	"moodmate/internal/validation"
)

// ImageFetcher finds the preview image of a page.
type ImageFetcher interface {
	FetchImage(ctx context.Context, pageURL string) (string, error)
}

// MetadataService resolves preview images for shared links.
type MetadataService struct {
	fetcher ImageFetcher
}

func NewMetadataService(fetcher ImageFetcher) *MetadataService {
	return &MetadataService{fetcher: fetcher}
}

// Image returns the og:image of a supported music page, cached for a day.
// Only allow-listed hosts are fetched.
func (s *MetadataService) Image(ctx context.Context, pageURL string) (string, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return "", models.NewValidationError("Missing url")
	}
	if !validation.IsValidMusicLink(pageURL) {
		return "", models.NewValidationError(validation.MsgUnsupportedLinks)
	}

	var image string
	err := cache.Aside(ctx, cache.FamilyMetadata, cache.MetadataKey(pageURL), &image, cache.MetadataTTL, func() error {
		var fetchErr error
		image, fetchErr = s.fetcher.FetchImage(ctx, pageURL)
		return fetchErr
	})
	if err != nil {
		if errors.Is(err, metadata.ErrNoImage) {
			return "", &models.AppError{Code: models.CodeNotFound, Message: "No image found"}
		}
		return "", models.NewUpstreamError("Page metadata", err)
	}
	return image, nil
}
