// Package prefs persists the player's difficulty choice and settings.
package prefs

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/junkshot/internal/config"
)

// DefaultPath is where preferences live unless overridden.
const DefaultPath = "~/.junkshot/preferences.yaml"

// Settings holds the tunable player settings, each in 0..100.
type Settings struct {
	Sensitivity int `yaml:"sensitivity"`
	MusicVolume int `yaml:"music_volume"`
	SFXVolume   int `yaml:"sfx_volume"`
}

// DefaultSettings returns the out-of-the-box settings.
func DefaultSettings() Settings {
	return Settings{Sensitivity: 50, MusicVolume: 70, SFXVolume: 80}
}

// Preferences is the persisted document.
type Preferences struct {
	Difficulty string   `yaml:"difficulty,omitempty"`
	Settings   Settings `yaml:"settings"`
}

// Clamp rounds v and limits it to 0..100. NaN becomes 0.
func Clamp(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Max(0, math.Min(100, math.Round(v))))
}

// Normalize clamps every setting into range.
func (s Settings) Normalize() Settings {
	return Settings{
		Sensitivity: Clamp(float64(s.Sensitivity)),
		MusicVolume: Clamp(float64(s.MusicVolume)),
		SFXVolume:   Clamp(float64(s.SFXVolume)),
	}
}

// Store reads and writes preferences at a path.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *log.Logger
}

// NewStore creates a store at path; empty means DefaultPath.
func NewStore(path string, logger *log.Logger) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	expanded, err := config.ExpandHome(path)
	if err != nil {
		return nil, fmt.Errorf("prefs: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Store{path: expanded, logger: logger}, nil
}

// Path returns the file location.
func (s *Store) Path() string { return s.path }

// Load returns the stored preferences. A missing or unreadable file yields
// defaults; unreadable files are logged.
func (s *Store) Load() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() Preferences {
	// Missing keys keep their defaults.
	p := Preferences{Settings: DefaultSettings()}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return p
	}
	if err != nil {
		s.logger.Warn("preferences unreadable, using defaults", "path", s.path, "err", err)
		return p
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		s.logger.Warn("preferences corrupt, using defaults", "path", s.path, "err", err)
		return Preferences{Settings: DefaultSettings()}
	}
	if !config.DefaultDifficulties().Valid(p.Difficulty) {
		p.Difficulty = ""
	}
	p.Settings = p.Settings.Normalize()
	return p
}

func (s *Store) save(p Preferences) error {
	p.Settings = p.Settings.Normalize()
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("prefs: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("prefs: create directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("prefs: write %s: %w", s.path, err)
	}
	return nil
}

// StoredDifficulty returns the saved difficulty or "" when none is valid.
func (s *Store) StoredDifficulty() string {
	return s.Load().Difficulty
}

// SetDifficulty persists the chosen difficulty.
func (s *Store) SetDifficulty(name string) error {
	if !config.DefaultDifficulties().Valid(name) {
		return fmt.Errorf("prefs: unknown difficulty %q", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.load()
	p.Difficulty = name
	return s.save(p)
}

// SaveSettings clamps and persists settings, returning what was stored.
func (s *Store) SaveSettings(settings Settings) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.load()
	p.Settings = settings.Normalize()
	return p.Settings, s.save(p)
}
