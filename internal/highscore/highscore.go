// Package highscore serves and consumes the best-score API:
// GET /api/getHighestScore and POST /api/saveHighestScore.
package highscore

import (
	"context"
	"errors"

	"github.com/vovakirdan/junkshot/internal/storage"
)

// Route paths.
const (
	PathGetHighest  = "/api/getHighestScore"
	PathSaveHighest = "/api/saveHighestScore"
)

var (
	// ErrInvalidDifficulty is returned for names outside the difficulty table.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrInvalidPayload is returned for unusable save requests.
	ErrInvalidPayload = errors.New("invalid payload")
)

// SaveResult reports the outcome of a save.
type SaveResult struct {
	Updated bool `json:"updated"`
	Score   int  `json:"score"`
}

// Store is the persistence the endpoints need.
type Store interface {
	HighScore(ctx context.Context, difficulty string) (storage.HighScore, bool, error)
	SaveHighScore(ctx context.Context, difficulty string, score int) (bool, int, error)
}

var _ Store = (*storage.Store)(nil)
