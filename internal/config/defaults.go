package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/junkshot.yaml
var defaultJunkShotYAML []byte

// DefaultGameplay returns the default gameplay parameters.
func DefaultGameplay() Gameplay {
	return Gameplay{
		PromptDuration: 2 * time.Second,
		SpawnSettle:    300 * time.Millisecond,
		PointsPerHit:   100,
		ShotCooldown:   200 * time.Millisecond,
		TimerScope:     TimerScopeRound,
		TimeoutPolicy:  TimeoutDeductLife,
		Categories:     []string{"organic", "inorganic", "recyclable", "hazardous"},
	}
}

// DefaultConfig returns the default JunkShot configuration.
func DefaultConfig() Config {
	return Config{
		Difficulties: DefaultDifficulties(),
		Gameplay:     DefaultGameplay(),
	}
}
