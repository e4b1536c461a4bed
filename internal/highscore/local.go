package highscore

import (
	"context"

	"github.com/charmbracelet/log"
)

// LocalScores reads and writes a Store directly, for offline play.
// Like Client it never surfaces errors.
type LocalScores struct {
	store  Store
	logger *log.Logger
}

// NewLocalScores wraps store.
func NewLocalScores(store Store, logger *log.Logger) *LocalScores {
	if logger == nil {
		logger = log.Default()
	}
	return &LocalScores{store: store, logger: logger}
}

// Best returns the stored best for difficulty, or 0.
func (l *LocalScores) Best(ctx context.Context, difficulty string) int {
	if l == nil || l.store == nil {
		return 0
	}
	hs, _, err := l.store.HighScore(ctx, difficulty)
	if err != nil {
		l.logger.Warn("high score unavailable", "difficulty", difficulty, "err", err)
		return 0
	}
	return hs.Score
}

// Submit records score if it beats the stored best.
func (l *LocalScores) Submit(ctx context.Context, difficulty string, score int) SaveResult {
	if l == nil || l.store == nil || score < 0 {
		return SaveResult{}
	}
	updated, stored, err := l.store.SaveHighScore(ctx, difficulty, score)
	if err != nil {
		l.logger.Warn("score submit failed", "difficulty", difficulty, "err", err)
		return SaveResult{}
	}
	return SaveResult{Updated: updated, Score: stored}
}
