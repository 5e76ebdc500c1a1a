package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidMusicLink_AllowListRoundTrip(t *testing.T) {
	t.Parallel()

	for _, domain := range AllowedMusicDomains {
		domain := domain
		t.Run(domain, func(t *testing.T) {
			t.Parallel()
			assert.True(t, IsValidMusicLink("https://"+domain+"/anything"))
		})
	}
}

func TestIsValidMusicLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		link string
		ok   bool
	}{
		{name: "spotify playlist", link: "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", ok: true},
		{name: "youtube short link", link: "https://youtu.be/dQw4w9WgXcQ", ok: true},
		{name: "host contains allowed domain", link: "https://m.soundcloud.com/artist/track", ok: true},
		{name: "uppercase host", link: "https://OPEN.SPOTIFY.COM/track/1", ok: true},
		{name: "evil host", link: "https://evil.example.com", ok: false},
		{name: "not a url", link: "not a url", ok: false},
		{name: "empty", link: "", ok: false},
		{name: "bad escape", link: "https://open.spotify.com/%zz", ok: false},
		{name: "domain only in path", link: "https://evil.example.com/open.spotify.com", ok: false},
		{name: "schemeless", link: "open.spotify.com/track/1", ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.ok, IsValidMusicLink(tt.link))
			})
		})
	}
}

func TestPlatform(t *testing.T) {
	t.Parallel()

	assert.Equal(t, PlatformSpotify, Platform("https://open.spotify.com/track/1"))
	assert.Equal(t, PlatformAmazon, Platform("https://music.amazon.in/albums/B0"))
	assert.Equal(t, PlatformApple, Platform("https://music.apple.com/us/album/1"))
	assert.Equal(t, PlatformYouTube, Platform("https://music.youtube.com/watch?v=1"))
	assert.Equal(t, PlatformYouTube, Platform("https://youtu.be/1"))
	assert.Equal(t, PlatformGaana, Platform("https://gaana.com/song/x"))
	assert.Equal(t, PlatformJioSaavn, Platform("https://www.jiosaavn.com/song/x"))
	assert.Equal(t, PlatformSoundCloud, Platform("https://on.soundcloud.com/abc"))
	assert.Equal(t, "", Platform("https://evil.example.com"))
}

func TestAllValidMusicLinks(t *testing.T) {
	t.Parallel()

	assert.True(t, AllValidMusicLinks([]string{"https://open.spotify.com/a", "https://youtu.be/b"}))
	assert.False(t, AllValidMusicLinks([]string{"https://open.spotify.com/a", "https://evil.example.com"}))
}
