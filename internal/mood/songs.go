package mood

import (
	"math"
	"strconv"
	"strings"

	"moodmate/internal/models"
)

// rawSong mirrors models.Song but tolerates the loose typing of the
// upstreams: the classifier's dataset uses numeric emotion ids, the LLM
// uses labels.
type rawSong struct {
	TrackName  string  `json:"track_name"`
	Artists    string  `json:"artists"`
	AlbumName  string  `json:"album_name"`
	TrackGenre string  `json:"track_genre"`
	Valence    float64 `json:"valence"`
	Energy     float64 `json:"energy"`
	EmotionID  any     `json:"emotion_id"`
	AlbumArt   string  `json:"album_art"`
	SpotifyURL string  `json:"spotify_url"`
}

func convertSongs(in []rawSong) []models.Song {
	out := make([]models.Song, 0, len(in))
	for _, s := range in {
		out = append(out, models.Song{
			TrackName:  s.TrackName,
			Artists:    s.Artists,
			AlbumName:  s.AlbumName,
			TrackGenre: s.TrackGenre,
			Valence:    s.Valence,
			Energy:     s.Energy,
			EmotionID:  scalarString(s.EmotionID),
			AlbumArt:   s.AlbumArt,
			SpotifyURL: s.SpotifyURL,
		})
	}
	return out
}

// normalizeConfidence renders a confidence value as a percentage string.
// Strings pass through trimmed. Numbers in [0,1] are ratios; larger numbers
// are already percentages.
func normalizeConfidence(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(c)
	case float64:
		if c >= 0 && c <= 1 {
			c *= 100
		}
		return strconv.FormatFloat(math.Round(c*100)/100, 'f', 2, 64) + "%"
	default:
		return scalarString(v)
	}
}

func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
