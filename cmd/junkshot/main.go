// junkshot is a trash-sorting shooting gallery for the terminal, SSH and
// the browser.
//
// Usage:
//
//	junkshot play [--difficulty d]   - Play a game
//	junkshot menu                    - Start with the difficulty menu
//	junkshot serve                   - Serve the score API, websocket play and SSH
//	junkshot scores [difficulty]     - Show best scores
//	junkshot difficulties            - List difficulty profiles
//	junkshot settings                - Show or change player settings
//
// Global flags:
//
//	--fps <rate>      - View refresh rate (default: 30)
//	--seed <value>    - RNG seed for reproducible rounds
//	--db <path>       - Scores database (default: ~/.junkshot/scores.db)
//	--config <path>   - Game config YAML
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/junkshot/internal/catalog"
	"github.com/vovakirdan/junkshot/internal/config"
	"github.com/vovakirdan/junkshot/internal/highscore"
	"github.com/vovakirdan/junkshot/internal/platform/tui"
	"github.com/vovakirdan/junkshot/internal/prefs"
	"github.com/vovakirdan/junkshot/internal/storage"
)

var (
	// Global flags
	flagFPS       int
	flagSeed      int64
	flagDBPath    string
	flagConfig    string
	flagPrefsPath string
	flagCatalog   string
	flagScoreURL  string
	flagLogFile   string
	flagDebug     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "junkshot",
	Short: "JunkShot - shoot the trash that matches the category",
	Long: `JunkShot is a shooting gallery about sorting waste. Every round names a
category; shoot every item that belongs to it before the timer runs out.
Hitting the wrong item costs a life.

Available commands:
  play          - Play a game directly
  menu          - Interactive difficulty menu
  serve         - Score API, websocket play and SSH server
  scores        - View best scores
  difficulties  - List difficulty profiles
  settings      - Show or change player settings

Examples:
  junkshot play --difficulty hard
  junkshot menu
  junkshot serve --http :8080 --ssh :23234
  junkshot scores easy`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "View refresh rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.junkshot/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagPrefsPath, "prefs", prefs.DefaultPath, "Path to player preferences")
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "Item catalog file or URL (default: built-in)")
	rootCmd.PersistentFlags().StringVar(&flagScoreURL, "score-server", "", "Base URL of a remote score API (default: local database)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "~/.junkshot/junkshot.log", "Log file for terminal play")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Log gameplay details")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(difficultiesCmd)
	rootCmd.AddCommand(settingsCmd)
}

// newLogger creates a prefixed logger writing to w.
func newLogger(w *os.File, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if flagDebug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// openLogFile opens the terminal-play log. The TUI owns the screen, so
// logs cannot go to stderr.
func openLogFile() (*os.File, error) {
	path, err := config.ExpandHome(flagLogFile)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// loadConfig loads the game config, falling back to defaults with a warning.
func loadConfig(logger *log.Logger) config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		logger.Warn("using default config", "err", err)
	}
	return cfg
}

// openStore opens the scores database at path.
func openStore(path string) (*storage.Store, error) {
	store, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scores database: %w", err)
	}
	return store, nil
}

// localDeps wires the terminal front end. The returned func releases
// everything it opened.
func localDeps(logger *log.Logger) (tui.Deps, func(), error) {
	deps := tui.Deps{
		Config:  loadConfig(logger),
		Catalog: catalog.Open(flagCatalog),
		Logger:  logger,
	}

	store, err := prefs.NewStore(flagPrefsPath, logger)
	if err != nil {
		return deps, func() {}, err
	}
	deps.Prefs = store

	if flagScoreURL != "" {
		deps.Scores = highscore.NewClient(flagScoreURL, logger)
		return deps, func() {}, nil
	}

	db, err := openStore(flagDBPath)
	if err != nil {
		// Play still works; scores just are not kept.
		logger.Warn("scores disabled", "err", err)
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return deps, func() {}, nil
	}
	deps.Scores = highscore.NewLocalScores(db, logger)
	deps.Board = db
	return deps, func() { db.Close() }, nil
}
