// Package storage provides SQLite-based persistence for best scores.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for score persistence.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// HighScore is the best score recorded for one difficulty.
type HighScore struct {
	Difficulty string
	Score      int
	UpdatedAt  time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer keeps the read-compare-write upsert serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db, now: time.Now}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS highscores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			difficulty TEXT NOT NULL UNIQUE,
			score INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// HighScore returns the best score for difficulty. ok is false when
// nothing has been recorded yet.
func (s *Store) HighScore(ctx context.Context, difficulty string) (HighScore, bool, error) {
	var (
		hs        = HighScore{Difficulty: difficulty}
		updatedAt any
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT score, updated_at FROM highscores WHERE difficulty = ?",
		difficulty,
	).Scan(&hs.Score, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return hs, false, nil
	}
	if err != nil {
		return hs, false, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	hs.UpdatedAt = parseTime(updatedAt)
	return hs, true, nil
}

// SaveHighScore records score if it beats the stored best for difficulty.
// It returns whether the record changed and the best score now stored.
func (s *Store) SaveHighScore(ctx context.Context, difficulty string, score int) (bool, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx,
		"SELECT score FROM highscores WHERE difficulty = ?",
		difficulty,
	).Scan(&current)

	now := s.now().UTC().Format(time.RFC3339Nano)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO highscores (difficulty, score, updated_at) VALUES (?, ?, ?)",
			difficulty, score, now,
		); err != nil {
			return false, 0, fmt.Errorf("storage: cannot insert high score: %w", err)
		}
	case err != nil:
		return false, 0, fmt.Errorf("storage: cannot query high score: %w", err)
	case score > current:
		if _, err := tx.ExecContext(ctx,
			"UPDATE highscores SET score = ?, updated_at = ? WHERE difficulty = ?",
			score, now, difficulty,
		); err != nil {
			return false, 0, fmt.Errorf("storage: cannot update high score: %w", err)
		}
	default:
		return false, current, nil
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("storage: cannot commit high score: %w", err)
	}
	return true, score, nil
}

// HighScores returns every recorded best score ordered by difficulty name.
func (s *Store) HighScores(ctx context.Context) ([]HighScore, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT difficulty, score, updated_at FROM highscores ORDER BY difficulty",
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query high scores: %w", err)
	}
	defer rows.Close()

	var out []HighScore
	for rows.Next() {
		var (
			hs        HighScore
			updatedAt any
		)
		if err := rows.Scan(&hs.Difficulty, &hs.Score, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		hs.UpdatedAt = parseTime(updatedAt)
		out = append(out, hs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// ClearHighScore deletes the record for difficulty.
func (s *Store) ClearHighScore(ctx context.Context, difficulty string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM highscores WHERE difficulty = ?", difficulty)
	if err != nil {
		return fmt.Errorf("storage: cannot clear high score: %w", err)
	}
	return nil
}

// parseTime handles both time.Time and the string layouts SQLite hands back.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
