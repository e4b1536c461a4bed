// Package config provides YAML-based game configuration loading and
// difficulty lookup for the shooting gallery.
package config

import "time"

// Config contains all tunable configuration for a JunkShot game.
type Config struct {
	Difficulties DifficultyTable `yaml:"difficulties"`
	Gameplay     Gameplay        `yaml:"gameplay"`
}

// Gameplay defines round pacing, scoring and policy parameters.
type Gameplay struct {
	PromptDuration time.Duration `yaml:"prompt_duration"` // Non-skippable round prompt
	SpawnSettle    time.Duration `yaml:"spawn_settle"`    // Delay between spawn and input enable
	PointsPerHit   int           `yaml:"points_per_hit"`
	ShotCooldown   time.Duration `yaml:"shot_cooldown"` // Minimum interval between accepted shots
	TimerScope     TimerScope    `yaml:"timer_scope"`
	TimeoutPolicy  TimeoutPolicy `yaml:"timeout_policy"`
	Categories     []string      `yaml:"categories"`
}

// TimerScope decides whether the countdown restarts every round.
type TimerScope string

const (
	// TimerScopeRound resets the countdown to the full limit at every round start.
	TimerScopeRound TimerScope = "round"
	// TimerScopeSession runs a single countdown for the whole game.
	TimerScopeSession TimerScope = "session"
)

// TimeoutPolicy decides what running out of time costs while lives remain.
type TimeoutPolicy string

const (
	// TimeoutDeductLife takes a life and moves on to the next round.
	TimeoutDeductLife TimeoutPolicy = "deduct_life"
	// TimeoutFailRound ends the round without touching lives.
	TimeoutFailRound TimeoutPolicy = "fail_round"
)

// Valid reports whether the scope is a known value.
func (s TimerScope) Valid() bool {
	return s == TimerScopeRound || s == TimerScopeSession
}

// Valid reports whether the policy is a known value.
func (p TimeoutPolicy) Valid() bool {
	return p == TimeoutDeductLife || p == TimeoutFailRound
}

// Normalize fills zero or invalid gameplay fields with defaults.
func (g Gameplay) Normalize() Gameplay {
	def := DefaultGameplay()
	if g.PromptDuration < 0 {
		g.PromptDuration = def.PromptDuration
	}
	if g.SpawnSettle < 0 {
		g.SpawnSettle = def.SpawnSettle
	}
	if g.PointsPerHit <= 0 {
		g.PointsPerHit = def.PointsPerHit
	}
	if g.ShotCooldown <= 0 {
		g.ShotCooldown = def.ShotCooldown
	}
	if !g.TimerScope.Valid() {
		g.TimerScope = def.TimerScope
	}
	if !g.TimeoutPolicy.Valid() {
		g.TimeoutPolicy = def.TimeoutPolicy
	}
	if len(g.Categories) == 0 {
		g.Categories = def.Categories
	}
	return g
}
