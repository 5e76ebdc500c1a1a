package service

import (
	"context"
	"errors"
	"testing"

	"moodmate/internal/metadata"
	"moodmate/internal/models"
	"moodmate/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type imageFetcherStub struct {
	calls   int
	fetchFn func(context.Context, string) (string, error)
}

func (s *imageFetcherStub) FetchImage(ctx context.Context, pageURL string) (string, error) {
	s.calls++
	return s.fetchFn(ctx, pageURL)
}

func TestMetadataService_Image(t *testing.T) {
	t.Parallel()

	fetcher := &imageFetcherStub{fetchFn: func(_ context.Context, pageURL string) (string, error) {
		switch pageURL {
		case "https://open.spotify.com/track/none":
			return "", metadata.ErrNoImage
		case "https://open.spotify.com/track/forbidden":
			return "", &metadata.StatusError{Code: 403}
		}
		return "https://i.scdn.co/image/abc", nil
	}}
	svc := NewMetadataService(fetcher)
	ctx := context.Background()

	img, err := svc.Image(ctx, " https://open.spotify.com/track/1 ")
	require.NoError(t, err)
	assert.Equal(t, "https://i.scdn.co/image/abc", img)
	assert.Equal(t, 1, fetcher.calls)

	_, err = svc.Image(ctx, "")
	assert.Equal(t, "Missing url", assertAppError(t, err, models.CodeValidation).Message)

	_, err = svc.Image(ctx, "https://evil.example.com/page")
	assert.Equal(t, validation.MsgUnsupportedLinks, assertAppError(t, err, models.CodeValidation).Message)
	assert.Equal(t, 1, fetcher.calls, "disallowed hosts are never fetched")

	_, err = svc.Image(ctx, "https://open.spotify.com/track/none")
	assert.Equal(t, "No image found", assertAppError(t, err, models.CodeNotFound).Message)

	_, err = svc.Image(ctx, "https://open.spotify.com/track/forbidden")
	appErr := assertAppError(t, err, models.CodeUpstreamUnavailable)
	var status *metadata.StatusError
	assert.True(t, errors.As(appErr, &status))
}
