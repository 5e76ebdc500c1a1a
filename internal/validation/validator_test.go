package validation

import (
	"errors"
	"strings"
	"testing"

	"moodmate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vibeRequest struct {
	Emotion string   `json:"emotion" validate:"required,max=50"`
	Links   []string `json:"links" validate:"min=1,max=5,dive,musiclink"`
	Tagline *string  `json:"tagline" validate:"omitempty,max=60"`
}

func requireValidationMessage(t *testing.T, err error, want string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Equal(t, want, appErr.Message)
}

func TestStruct_PlaylistRules(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 61)
	ok := strings.Repeat("b", 60)
	sixLinks := []string{
		"https://open.spotify.com/1", "https://open.spotify.com/2", "https://open.spotify.com/3",
		"https://open.spotify.com/4", "https://open.spotify.com/5", "https://open.spotify.com/6",
	}

	assert.NoError(t, Struct(&vibeRequest{Emotion: "Happy", Links: []string{"https://open.spotify.com/x"}}))
	assert.NoError(t, Struct(&vibeRequest{Emotion: "Happy", Links: sixLinks[:5], Tagline: &ok}))

	requireValidationMessage(t, Struct(&vibeRequest{Emotion: "Happy"}), MsgLinksRequired)
	requireValidationMessage(t, Struct(&vibeRequest{Emotion: "Happy", Links: []string{}}), MsgLinksRequired)
	requireValidationMessage(t, Struct(&vibeRequest{Emotion: "Happy", Links: sixLinks}), MsgTooManyLinks)
	requireValidationMessage(t, Struct(&vibeRequest{
		Emotion: "Happy",
		Links:   []string{"https://open.spotify.com/x", "https://evil.example.com"},
	}), MsgUnsupportedLinks)
	requireValidationMessage(t, Struct(&vibeRequest{Links: []string{"https://youtu.be/x"}}), "Emotion is required")
	requireValidationMessage(t, Struct(&vibeRequest{
		Emotion: "Happy",
		Links:   []string{"https://youtu.be/x"},
		Tagline: &long,
	}), "Tagline must be at most 60 characters")
}

func TestStruct_CountsRunesNotBytes(t *testing.T) {
	t.Parallel()

	tagline := strings.Repeat("é", 60)
	assert.NoError(t, Struct(&vibeRequest{Emotion: "Calm", Links: []string{"https://youtu.be/x"}, Tagline: &tagline}))
}
