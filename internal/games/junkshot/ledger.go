package junkshot

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/junkshot/internal/config"
)

// Ledger tracks score and lives for one session.
type Ledger struct {
	score   int
	lives   int
	onScore []func(int)
	onLives []func(int)
	logger  *log.Logger
}

// NewLedger creates an empty ledger.
func NewLedger(logger *log.Logger) *Ledger {
	if logger == nil {
		logger = log.Default()
	}
	return &Ledger{logger: logger}
}

// OnScore registers a score observer.
func (l *Ledger) OnScore(fn func(score int)) {
	l.onScore = append(l.onScore, fn)
}

// OnLives registers a lives observer.
func (l *Ledger) OnLives(fn func(lives int)) {
	l.onLives = append(l.onLives, fn)
}

// Init zeroes the score and sets lives from the profile.
func (l *Ledger) Init(profile config.DifficultyProfile) {
	l.ResetScore()
	l.ResetLives(profile)
}

// AddPoints adds n points. Non-finite or non-positive values are ignored
// and fractions are truncated.
func (l *Ledger) AddPoints(n float64) {
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return
	}
	l.score += int(n)
	l.emitScore()
}

// DeductLife removes one life, never going below zero, and returns what is left.
func (l *Ledger) DeductLife() int {
	l.lives = max(0, l.lives-1)
	l.emitLives()
	return l.lives
}

// ResetScore sets the score to zero.
func (l *Ledger) ResetScore() {
	l.score = 0
	l.emitScore()
}

// ResetLives restores the starting lives of profile.
func (l *Ledger) ResetLives(profile config.DifficultyProfile) {
	l.lives = max(0, profile.Lives)
	l.emitLives()
}

// Score returns the current score.
func (l *Ledger) Score() int { return l.score }

// Lives returns the remaining lives.
func (l *Ledger) Lives() int { return l.lives }

func (l *Ledger) emitScore() {
	for _, fn := range l.onScore {
		safeNotify(l.logger, "score", func() { fn(l.score) })
	}
}

func (l *Ledger) emitLives() {
	for _, fn := range l.onLives {
		safeNotify(l.logger, "lives", func() { fn(l.lives) })
	}
}

// safeNotify runs an observer, logging and swallowing a panic.
func safeNotify(logger *log.Logger, channel string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("observer panicked", "channel", channel, "panic", r)
		}
	}()
	fn()
}
