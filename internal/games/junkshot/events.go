package junkshot

// Reason explains why a round or game ended.
type Reason string

const (
	ReasonCleared Reason = "cleared"
	ReasonTimeout Reason = "timeout"
	ReasonLives   Reason = "lives"
	ReasonTime    Reason = "time"
	ReasonError   Reason = "error"
	ReasonQuit    Reason = "quit"
)

// Event is emitted by a Session to its observers.
type Event interface {
	Kind() string
}

// ScoreChanged carries the new score.
type ScoreChanged struct {
	Score int `json:"score"`
}

// LivesChanged carries the remaining lives.
type LivesChanged struct {
	Lives int `json:"lives"`
}

// TimeChanged carries the seconds left on the countdown.
type TimeChanged struct {
	Remaining int `json:"remaining"`
}

// HighScoreLoaded carries the stored best for the session's difficulty.
type HighScoreLoaded struct {
	HighScore int `json:"highScore"`
}

// RoundStarted announces a round's category.
type RoundStarted struct {
	Round    int    `json:"round"`
	Category string `json:"category"`
	Prompt   string `json:"prompt"`
}

// TargetsSpawned lists the round's targets at spawn time.
type TargetsSpawned struct {
	Round            int            `json:"round"`
	Targets          []PlacedTarget `json:"targets"`
	CorrectRemaining int            `json:"correctRemaining"`
}

// InputEnabled signals that shots are now accepted.
type InputEnabled struct {
	Round int `json:"round"`
}

// ShotResolved reports an accepted shot.
type ShotResolved struct {
	Outcome          ShotOutcome `json:"outcome"`
	CorrectRemaining int         `json:"correctRemaining"`
}

// RoundEnded reports how a round finished.
type RoundEnded struct {
	Round  int    `json:"round"`
	Reason Reason `json:"reason"`
}

// PauseChanged reports pause or resume.
type PauseChanged struct {
	Paused bool `json:"paused"`
}

// Summary is the final result of a game.
type Summary struct {
	Difficulty string `json:"difficulty"`
	Score      int    `json:"score"`
	HighScore  int    `json:"highScore"`
	Rounds     int    `json:"rounds"`
	Reason     Reason `json:"reason"`
	NewBest    bool   `json:"newBest"`
}

// GameOver is the final event of a session.
type GameOver struct {
	Summary Summary `json:"summary"`
}

func (ScoreChanged) Kind() string    { return "score" }
func (LivesChanged) Kind() string    { return "lives" }
func (TimeChanged) Kind() string     { return "time" }
func (HighScoreLoaded) Kind() string { return "highscore" }
func (RoundStarted) Kind() string    { return "round_started" }
func (TargetsSpawned) Kind() string  { return "targets_spawned" }
func (InputEnabled) Kind() string    { return "input_enabled" }
func (ShotResolved) Kind() string    { return "shot" }
func (RoundEnded) Kind() string      { return "round_ended" }
func (PauseChanged) Kind() string    { return "pause" }
func (GameOver) Kind() string        { return "game_over" }
