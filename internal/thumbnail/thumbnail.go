// Package thumbnail picks the bundled artwork shown for playlist links.
//
// Selection is a stable hash of the playlist id and the link position, so a
// given vibe always renders the same art while neighbouring cards vary.
// Platforms without bundled art return "" and are resolved by the client via
// the metadata endpoint.
package thumbnail

import (
	"fmt"
	"hash/fnv"
	"strconv"

	"moodmate/internal/models"
	"moodmate/internal/validation"

	"github.com/google/uuid"
)

type family struct {
	prefix string
	count  uint32
}

var families = map[string]family{
	validation.PlatformSpotify:    {prefix: "spot", count: 5},
	validation.PlatformAmazon:     {prefix: "ama", count: 4},
	validation.PlatformSoundCloud: {prefix: "cloud", count: 2},
}

// ForLink returns the asset path for the link at index i of playlist id.
func ForLink(id uuid.UUID, i int, link string) string {
	fam, ok := families[validation.Platform(link)]
	if !ok {
		return ""
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(id.String()))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(strconv.Itoa(i)))
	return fmt.Sprintf("/thumbnails/%s%d.png", fam.prefix, h.Sum32()%fam.count+1)
}

// ForPlaylist fills p.Thumbnails with one entry per link.
func ForPlaylist(p *models.Playlist) {
	thumbs := make([]string, len(p.Links))
	for i, link := range p.Links {
		thumbs[i] = ForLink(p.ID, i, link)
	}
	p.Thumbnails = thumbs
}

// Fill applies ForPlaylist to every element.
func Fill(playlists []models.Playlist) {
	for i := range playlists {
		ForPlaylist(&playlists[i])
	}
}
