// Package validation holds input rules shared by the services and the HTTP layer.
package validation

import (
	"net/url"
	"strings"
)

// AllowedMusicDomains are the streaming-service hosts a playlist link may point at.
// A link is accepted when its hostname contains one of these entries.
var AllowedMusicDomains = []string{
	"open.spotify.com",
	"music.amazon.in",
	"music.amazon.com",
	"music.apple.com",
	"www.youtube.com",
	"music.youtube.com",
	"youtu.be",
	"gaana.com",
	"www.jiosaavn.com",
	"soundcloud.com",
	"on.soundcloud.com",
}

// Platform identifiers returned by Platform.
const (
	PlatformSpotify    = "spotify"
	PlatformAmazon     = "amazon"
	PlatformApple      = "apple"
	PlatformYouTube    = "youtube"
	PlatformGaana      = "gaana"
	PlatformJioSaavn   = "jiosaavn"
	PlatformSoundCloud = "soundcloud"
)

// IsValidMusicLink reports whether raw parses as a URL whose host belongs to
// the streaming allow-list. Malformed input returns false.
func IsValidMusicLink(raw string) bool {
	host := hostname(raw)
	if host == "" {
		return false
	}
	for _, domain := range AllowedMusicDomains {
		if strings.Contains(host, domain) {
			return true
		}
	}
	return false
}

// AllValidMusicLinks reports whether every link passes IsValidMusicLink.
func AllValidMusicLinks(links []string) bool {
	for _, l := range links {
		if !IsValidMusicLink(l) {
			return false
		}
	}
	return true
}

// Platform returns the streaming platform a link belongs to, or "" when the
// link is not on the allow-list.
func Platform(raw string) string {
	if !IsValidMusicLink(raw) {
		return ""
	}
	host := hostname(raw)
	switch {
	case strings.Contains(host, "spotify"):
		return PlatformSpotify
	case strings.Contains(host, "amazon"):
		return PlatformAmazon
	case strings.Contains(host, "apple"):
		return PlatformApple
	case strings.Contains(host, "youtube"), strings.Contains(host, "youtu.be"):
		return PlatformYouTube
	case strings.Contains(host, "gaana"):
		return PlatformGaana
	case strings.Contains(host, "jiosaavn"):
		return PlatformJioSaavn
	case strings.Contains(host, "soundcloud"):
		return PlatformSoundCloud
	}
	return ""
}

func hostname(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	// url.Parse accepts "not a url" as a relative path; only absolute URLs carry a host.
	if u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
