package prefs

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "prefs", "preferences.yaml"), nil)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	return s
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{50, 50},
		{-10, 0},
		{250, 100},
		{49.5, 50},
		{49.4, 49},
		{math.NaN(), 0},
		{math.Inf(1), 100},
	}
	for _, tc := range tests {
		if got := Clamp(tc.in); got != tc.want {
			t.Errorf("Clamp(%v) = %d, expected %d", tc.in, got, tc.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	s := newTestStore(t)

	p := s.Load()
	if p.Difficulty != "" {
		t.Errorf("Difficulty = %q, expected none", p.Difficulty)
	}
	if p.Settings != DefaultSettings() {
		t.Errorf("Settings = %+v, expected defaults", p.Settings)
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)

	stored, err := s.SaveSettings(Settings{Sensitivity: 120, MusicVolume: -5, SFXVolume: 33})
	if err != nil {
		t.Fatalf("SaveSettings() failed: %v", err)
	}
	if stored != (Settings{Sensitivity: 100, MusicVolume: 0, SFXVolume: 33}) {
		t.Errorf("SaveSettings() = %+v, expected clamped values", stored)
	}
	if err := s.SetDifficulty("hard"); err != nil {
		t.Fatalf("SetDifficulty() failed: %v", err)
	}

	p := s.Load()
	if p.Difficulty != "hard" || p.Settings != stored {
		t.Errorf("Load() = %+v", p)
	}
	if s.StoredDifficulty() != "hard" {
		t.Errorf("StoredDifficulty() = %q, expected hard", s.StoredDifficulty())
	}
}

func TestSetDifficultyRejectsUnknown(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetDifficulty("nightmare"); err == nil {
		t.Error("expected error for unknown difficulty")
	}
}

func TestLoadPartialAndCorruptFiles(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		t.Fatal(err)
	}

	partial := "difficulty: nightmare\nsettings:\n  music_volume: 10\n"
	if err := os.WriteFile(s.Path(), []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}
	p := s.Load()
	if p.Difficulty != "" {
		t.Errorf("invalid stored difficulty kept: %q", p.Difficulty)
	}
	if p.Settings.MusicVolume != 10 || p.Settings.Sensitivity != 50 || p.Settings.SFXVolume != 80 {
		t.Errorf("partial settings = %+v, expected defaults for missing keys", p.Settings)
	}

	if err := os.WriteFile(s.Path(), []byte("settings: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if p := s.Load(); p.Settings != DefaultSettings() {
		t.Errorf("corrupt file settings = %+v, expected defaults", p.Settings)
	}
}
