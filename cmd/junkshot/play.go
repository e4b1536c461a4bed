package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/junkshot/internal/config"
	"github.com/vovakirdan/junkshot/internal/core"
	"github.com/vovakirdan/junkshot/internal/platform/tui"
)

var flagDifficulty string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game",
	Long: `Start a game right away.

The difficulty you pick is remembered and used by later games.

Controls:
  Arrows/WASD  - Aim
  Mouse        - Aim, click to fire
  Space/F      - Fire
  P            - Pause / resume
  R            - Replay (after game over)
  B/Esc        - Back to menu (paused or game over)
  Q/Ctrl+C     - Quit

Examples:
  junkshot play
  junkshot play --difficulty hard
  junkshot play --seed 42`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runTUI(true, flagDifficulty)
	},
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with the difficulty menu",
	Long: `Start in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a difficulty.
Tab opens the high scores, O opens settings.
After a game you return to the menu to play again.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runTUI(false, "")
	},
}

func init() {
	playCmd.Flags().StringVarP(&flagDifficulty, "difficulty", "d", "", "Difficulty: easy, intermediate, hard")
}

// terminalConfig reads the terminal size for the first frame.
func terminalConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	return cfg
}

// runTUI opens the app. With direct set it skips the menu, using
// difficulty or else the remembered one.
func runTUI(direct bool, difficulty string) error {
	logFile, err := openLogFile()
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := newLogger(logFile, "junkshot")

	deps, release, err := localDeps(logger)
	if err != nil {
		return err
	}
	defer release()

	if difficulty != "" && !deps.Config.Difficulties.Valid(difficulty) {
		return fmt.Errorf("unknown difficulty %q (run 'junkshot difficulties')", difficulty)
	}
	if direct && difficulty == "" {
		difficulty = config.DefaultDifficulty
		if stored := deps.Prefs.StoredDifficulty(); stored != "" {
			difficulty = stored
		}
	}
	return tui.Run(deps, terminalConfig(), difficulty)
}
