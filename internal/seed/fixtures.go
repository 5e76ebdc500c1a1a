package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/vibes.yaml
var vibesYAML []byte

// FixtureVibe is a hand-written vibe shared before any generated ones.
type FixtureVibe struct {
	Emotion string   `yaml:"emotion"`
	Tagline string   `yaml:"tagline"`
	Links   []string `yaml:"links"`
}

type fixtureFile struct {
	Vibes []FixtureVibe `yaml:"vibes"`
}

// LoadFixtures parses the embedded curated vibes.
func LoadFixtures() ([]FixtureVibe, error) {
	return parseFixtures(vibesYAML)
}

func parseFixtures(raw []byte) ([]FixtureVibe, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse vibe fixtures: %w", err)
	}
	for i, v := range f.Vibes {
		if v.Emotion == "" || len(v.Links) == 0 {
			return nil, fmt.Errorf("fixture vibe %d: emotion and links are required", i)
		}
	}
	return f.Vibes, nil
}
