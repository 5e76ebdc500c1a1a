// Package featureflags gates optional MoodMate features such as image mood
// detection. Flags come from the FEATURE_FLAGS setting, a comma-separated
// list of name=rule pairs:
//
//	image_mood=on,trending_feed=25%,legacy_thumbnails=off
//
// A rule is on/true/1, off/false/0 or a percentage rollout. Percentage
// rollouts bucket signed-in users deterministically; anonymous viewers only
// see rules at 100%.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ImageMood gates POST /api/predict-emotion.
const ImageMood = "image_mood"

// rule is one parsed flag. percent is 0..100, or -1 when raw did not parse.
type rule struct {
	raw     string
	percent int
}

func parseRule(raw string) rule {
	switch raw {
	case "on", "true", "1":
		return rule{raw: raw, percent: 100}
	case "off", "false", "0":
		return rule{raw: raw, percent: 0}
	}
	if n, ok := strings.CutSuffix(raw, "%"); ok {
		if pct, err := strconv.Atoi(n); err == nil {
			return rule{raw: raw, percent: min(max(pct, 0), 100)}
		}
	}
	return rule{raw: raw, percent: -1}
}

// Manager holds the parsed flags. A nil Manager reports every flag off.
type Manager struct {
	rules map[string]rule
}

// NewManager parses raw. Pairs without a name or rule are ignored.
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name, value = normalize(name), normalize(value)
		if name == "" || value == "" {
			continue
		}
		rules[name] = parseRule(value)
	}
	return &Manager{rules: rules}
}

// Enabled reports whether name is on for viewer. uuid.Nil is anonymous.
func (m *Manager) Enabled(name string, viewer uuid.UUID) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	if !ok {
		return false
	}
	switch {
	case r.percent >= 100:
		return true
	case r.percent <= 0, viewer == uuid.Nil:
		return false
	}
	return bucket(name, viewer) < r.percent
}

// Raw returns the configured rules as written.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m.rules))
	for name, r := range m.rules {
		out[name] = r.raw
	}
	return out
}

// Snapshot evaluates every configured flag for viewer.
func (m *Manager) Snapshot(viewer uuid.UUID) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(m.rules))
	for name := range m.rules {
		out[name] = m.Enabled(name, viewer)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, viewer uuid.UUID) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name)))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write(viewer[:])
	return int(h.Sum32() % 100)
}
