// Package viewstate keeps a client-side copy of a user's dashboard and
// applies likes and deletes optimistically, rolling back when the server
// rejects them.
package viewstate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"moodmate/internal/apiclient"
	"moodmate/internal/models"

	"github.com/google/uuid"
)

// ErrUnknownVibe is returned when a mutation targets a vibe no list holds.
var ErrUnknownVibe = errors.New("vibe is not on the dashboard")

// Remote is the server side of the dashboard. apiclient.Client implements it.
type Remote interface {
	Dashboard(ctx context.Context) (*models.Dashboard, error)
	ToggleLike(ctx context.Context, id uuid.UUID) (models.LikeState, error)
	DeleteVibe(ctx context.Context, id uuid.UUID) error
	UpdateVibe(ctx context.Context, id uuid.UUID, in apiclient.VibeInput) (*models.Playlist, error)
}

var _ Remote = (*apiclient.Client)(nil)

// ListKind names one of the three dashboard lists.
type ListKind int

// Dashboard lists.
const (
	MyPosts ListKind = iota
	Liked
	Commented
	numLists
)

// State is a copy of the dashboard contents.
type State struct {
	Profile   *models.Profile
	MyPosts   []models.Playlist
	Liked     []models.Playlist
	Commented []models.Playlist
}

// Mutation is one optimistic change. Patch and Settle run under the
// dashboard lock; Remote runs without it.
type Mutation struct {
	// ID is the vibe whose entries are snapshotted for rollback.
	ID     uuid.UUID
	Patch  func(l *Lists)
	Remote func(ctx context.Context) error
	// Settle, if set, runs after Remote succeeds.
	Settle           func(l *Lists)
	RefetchOnFailure bool
}

// Options configure a Dashboard.
type Options struct {
	// RefetchOnFailure makes every failed mutation also reload the
	// dashboard after rolling back. Deletes always reload.
	RefetchOnFailure bool
}

// Dashboard is safe for concurrent use.
type Dashboard struct {
	remote Remote
	opts   Options

	mu    sync.Mutex
	lists Lists
}

// NewDashboard returns an empty dashboard; call Refresh to load it.
func NewDashboard(remote Remote, opts Options) *Dashboard {
	return &Dashboard{remote: remote, opts: opts}
}

// Snapshot returns a copy of the current state.
func (d *Dashboard) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return State{
		Profile:   d.lists.profile,
		MyPosts:   clonePlaylists(d.lists.items[MyPosts]),
		Liked:     clonePlaylists(d.lists.items[Liked]),
		Commented: clonePlaylists(d.lists.items[Commented]),
	}
}

// Refresh replaces the state with the server's dashboard.
func (d *Dashboard) Refresh(ctx context.Context) error {
	dash, err := d.remote.Dashboard(ctx)
	if err != nil {
		return fmt.Errorf("refresh dashboard: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lists.profile = dash.Profile
	d.lists.items[MyPosts] = clonePlaylists(dash.MyPosts)
	d.lists.items[Liked] = clonePlaylists(dash.Liked)
	d.lists.items[Commented] = clonePlaylists(dash.Commented)
	return nil
}

// Apply runs m: snapshot and patch under the lock, the remote call without
// it, then either Settle or a restore of the snapshot.
func (d *Dashboard) Apply(ctx context.Context, m Mutation) error {
	d.mu.Lock()
	snap := d.lists.snapshot(m.ID)
	if m.Patch != nil {
		m.Patch(&d.lists)
	}
	d.mu.Unlock()

	err := m.Remote(ctx)
	if err == nil {
		if m.Settle != nil {
			d.mu.Lock()
			m.Settle(&d.lists)
			d.mu.Unlock()
		}
		return nil
	}

	d.mu.Lock()
	d.lists.restore(m.ID, snap)
	d.mu.Unlock()

	if m.RefetchOnFailure || d.opts.RefetchOnFailure {
		if rerr := d.Refresh(ctx); rerr != nil {
			return errors.Join(err, rerr)
		}
	}
	return err
}

// ToggleLike flips the like on id everywhere it appears, keeps Liked in
// step, then overwrites the optimistic values with the server's answer.
func (d *Dashboard) ToggleLike(ctx context.Context, id uuid.UUID) error {
	d.mu.Lock()
	_, known := d.lists.find(id)
	d.mu.Unlock()
	if !known {
		return ErrUnknownVibe
	}

	var truth models.LikeState
	return d.Apply(ctx, Mutation{
		ID: id,
		Patch: func(l *Lists) {
			src, ok := l.find(id)
			if !ok {
				return
			}
			liked := !src.IsLiked
			likes := src.Likes + 1
			if !liked {
				likes = max(src.Likes-1, 0)
			}
			l.setLike(id, liked, likes)
		},
		Remote: func(ctx context.Context) error {
			var err error
			truth, err = d.remote.ToggleLike(ctx, id)
			return err
		},
		Settle: func(l *Lists) {
			l.setLike(id, truth.Liked, truth.Likes)
		},
	})
}

// Delete removes id from every list, restoring the original positions and
// reloading if the server refuses.
func (d *Dashboard) Delete(ctx context.Context, id uuid.UUID) error {
	return d.Apply(ctx, Mutation{
		ID:    id,
		Patch: func(l *Lists) { l.remove(id) },
		Remote: func(ctx context.Context) error {
			return d.remote.DeleteVibe(ctx, id)
		},
		RefetchOnFailure: true,
	})
}

// Edit updates id on the server, then reloads the whole dashboard. Nothing
// is patched locally.
func (d *Dashboard) Edit(ctx context.Context, id uuid.UUID, in apiclient.VibeInput) error {
	if _, err := d.remote.UpdateVibe(ctx, id, in); err != nil {
		return err
	}
	return d.Refresh(ctx)
}

// Lists is the mutable dashboard contents handed to patches.
type Lists struct {
	profile *models.Profile
	items   [numLists][]models.Playlist
}

// Items returns the entries of one list. Patches may modify them in place.
func (l *Lists) Items(kind ListKind) []models.Playlist {
	return l.items[kind]
}

// find returns the first entry for id, searching MyPosts, Liked, Commented.
func (l *Lists) find(id uuid.UUID) (models.Playlist, bool) {
	for k := range l.items {
		for _, p := range l.items[k] {
			if p.ID == id {
				return p, true
			}
		}
	}
	return models.Playlist{}, false
}

// setLike writes liked/likes to every entry of id and adds or removes it
// from Liked to match.
func (l *Lists) setLike(id uuid.UUID, liked bool, likes int64) {
	for k := range l.items {
		for i := range l.items[k] {
			if l.items[k][i].ID == id {
				l.items[k][i].IsLiked = liked
				l.items[k][i].Likes = likes
			}
		}
	}
	inLiked := indexOf(l.items[Liked], id) >= 0
	switch {
	case liked && !inLiked:
		src, ok := l.find(id)
		if ok {
			l.items[Liked] = append([]models.Playlist{clonePlaylist(src)}, l.items[Liked]...)
		}
	case !liked && inLiked:
		l.items[Liked] = removeID(l.items[Liked], id)
	}
}

func (l *Lists) remove(id uuid.UUID) {
	for k := range l.items {
		l.items[k] = removeID(l.items[k], id)
	}
}

// entrySnapshot records where id sat in one list, or index -1.
type entrySnapshot struct {
	index int
	entry models.Playlist
}

func (l *Lists) snapshot(id uuid.UUID) [numLists]entrySnapshot {
	var snap [numLists]entrySnapshot
	for k := range l.items {
		snap[k].index = indexOf(l.items[k], id)
		if snap[k].index >= 0 {
			snap[k].entry = clonePlaylist(l.items[k][snap[k].index])
		}
	}
	return snap
}

func (l *Lists) restore(id uuid.UUID, snap [numLists]entrySnapshot) {
	for k := range l.items {
		items := removeID(l.items[k], id)
		if s := snap[k]; s.index >= 0 {
			at := min(s.index, len(items))
			items = append(items, models.Playlist{})
			copy(items[at+1:], items[at:])
			items[at] = s.entry
		}
		l.items[k] = items
	}
}

func indexOf(items []models.Playlist, id uuid.UUID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func removeID(items []models.Playlist, id uuid.UUID) []models.Playlist {
	out := items[:0:0]
	for _, p := range items {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func clonePlaylist(p models.Playlist) models.Playlist {
	p.Links = append(models.Links(nil), p.Links...)
	p.Thumbnails = append([]string(nil), p.Thumbnails...)
	if p.Tagline != nil {
		t := *p.Tagline
		p.Tagline = &t
	}
	return p
}

func clonePlaylists(in []models.Playlist) []models.Playlist {
	out := make([]models.Playlist, len(in))
	for i, p := range in {
		out[i] = clonePlaylist(p)
	}
	return out
}
