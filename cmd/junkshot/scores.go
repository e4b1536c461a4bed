package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/junkshot/internal/config"
)

var flagClear bool

var scoresCmd = &cobra.Command{
	Use:   "scores [difficulty]",
	Short: "Show best scores",
	Long: `Display the best score of every difficulty, or of one.

Examples:
  junkshot scores
  junkshot scores hard
  junkshot scores hard --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the best score of the given difficulty")
}

func runScores(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(log.New(io.Discard))
	names := cfg.Difficulties.Names()
	if len(args) == 1 {
		if !cfg.Difficulties.Valid(args[0]) {
			return fmt.Errorf("unknown difficulty %q (run 'junkshot difficulties')", args[0])
		}
		names = []string{args[0]}
	} else if flagClear {
		return fmt.Errorf("--clear needs a difficulty")
	}

	store, err := openStore(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	ctx := context.Background()
	out := cmd.OutOrStdout()

	if flagClear {
		if err := store.ClearHighScore(ctx, names[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "Cleared the %s best score.\n", names[0])
		return nil
	}

	fmt.Fprintln(out, "Best Scores")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-14s  %-8s  %s\n", "Difficulty", "Score", "Updated")
	fmt.Fprintf(out, "  %-14s  %-8s  %s\n", "----------", "-----", "-------")

	played := false
	for _, name := range names {
		hs, ok, err := store.HighScore(ctx, name)
		if err != nil {
			return err
		}
		updated := "-"
		if ok {
			played = true
			updated = hs.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(out, "  %-14s  %-8d  %s\n", name, hs.Score, updated)
	}

	if !played {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "No scores recorded yet. Play 'junkshot play --difficulty %s' to set one!\n", firstOr(names, config.DefaultDifficulty))
	}
	return nil
}

func firstOr(names []string, fallback string) string {
	if len(names) == 0 {
		return fallback
	}
	return names[0]
}
