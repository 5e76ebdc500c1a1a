package models

// Song is a single recommendation returned by the mood services.
type Song struct {
	TrackName  string  `json:"track_name"`
	Artists    string  `json:"artists"`
	AlbumName  string  `json:"album_name,omitempty"`
	TrackGenre string  `json:"track_genre"`
	Valence    float64 `json:"valence"`
	Energy     float64 `json:"energy"`
	EmotionID  string  `json:"emotion_id"`
	AlbumArt   string  `json:"album_art,omitempty"`
	SpotifyURL string  `json:"spotify_url,omitempty"`
}

// MoodResult is the common response shape of text and image mood detection.
type MoodResult struct {
	Emotion    string `json:"emotion"`
	Confidence string `json:"confidence"`
	Songs      []Song `json:"songs"`
}

// EmotionCount is one bar of the analytics chart.
type EmotionCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// QuotaStatus describes a user's standing against the monthly share limit.
type QuotaStatus struct {
	Used        int64  `json:"used"`
	Limit       int    `json:"limit"`
	Remaining   int64  `json:"remaining"`
	WindowStart string `json:"window_start"`
	ResetsAt    string `json:"resets_at"`
}

// Dashboard bundles the three views of a user's own activity.
type Dashboard struct {
	Profile   *Profile   `json:"profile"`
	MyPosts   []Playlist `json:"my_posts"`
	Liked     []Playlist `json:"liked"`
	Commented []Playlist `json:"commented"`
}
