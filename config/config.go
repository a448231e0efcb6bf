// Package config loads user settings from a YAML file. A missing file is
// not an error: defaults apply until the player changes something.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings are the user-tunable knobs of the application shell.
type Settings struct {
	// DataPath points at the authored event data (file or directory).
	DataPath string `yaml:"data_path"`
	// SaveDir holds the save-slot database.
	SaveDir string `yaml:"save_dir"`
	// Seed fixes the session RNG; 0 means derive one from the clock.
	Seed int64 `yaml:"seed"`
	// PlainUI forces the line-based interface instead of the TUI.
	PlainUI bool `yaml:"plain_ui"`

	// Content hooks wired into the session.
	IntroEvent   string `yaml:"intro_event"`
	IntroFlag    string `yaml:"intro_flag"`
	MidbandEvent string `yaml:"midband_event"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	home, _ := os.UserHomeDir()
	return Settings{
		DataPath:     "data/story_data.json",
		SaveDir:      filepath.Join(home, ".fateloom"),
		IntroEvent:   "mission_brief",
		IntroFlag:    "mission_briefed",
		MidbandEvent: "fate_intervention",
	}
}

// Load reads settings from path, layered over defaults. A missing file
// returns the defaults without error; a malformed file is an error.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings back to path, creating parent directories.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
