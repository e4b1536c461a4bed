package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/junkshot/internal/prefs"
)

var (
	flagSensitivity    int
	flagMusicVolume    int
	flagSFXVolume      int
	flagPrefDifficulty string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change player settings",
	Long: `Show the stored preferences, or change them with flags.
Values are clamped to 0-100.

Examples:
  junkshot settings
  junkshot settings --sensitivity 70 --music 0
  junkshot settings --difficulty intermediate`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

func init() {
	settingsCmd.Flags().IntVar(&flagSensitivity, "sensitivity", 0, "Aim sensitivity (0-100)")
	settingsCmd.Flags().IntVar(&flagMusicVolume, "music", 0, "Music volume (0-100)")
	settingsCmd.Flags().IntVar(&flagSFXVolume, "sfx", 0, "Effects volume (0-100)")
	settingsCmd.Flags().StringVar(&flagPrefDifficulty, "difficulty", "", "Remembered difficulty")
}

func runSettings(cmd *cobra.Command, _ []string) error {
	store, err := prefs.NewStore(flagPrefsPath, log.New(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	current := store.Load()
	settings := current.Settings
	changed := false
	if flags.Changed("sensitivity") {
		settings.Sensitivity, changed = flagSensitivity, true
	}
	if flags.Changed("music") {
		settings.MusicVolume, changed = flagMusicVolume, true
	}
	if flags.Changed("sfx") {
		settings.SFXVolume, changed = flagSFXVolume, true
	}
	if changed {
		if _, err := store.SaveSettings(settings); err != nil {
			return err
		}
	}
	if flags.Changed("difficulty") {
		if err := store.SetDifficulty(flagPrefDifficulty); err != nil {
			return err
		}
	}

	printPreferences(cmd.OutOrStdout(), store.Path(), store.Load())
	return nil
}

func printPreferences(out io.Writer, path string, p prefs.Preferences) {
	difficulty := p.Difficulty
	if difficulty == "" {
		difficulty = "(not set)"
	}
	fmt.Fprintf(out, "Preferences (%s)\n\n", path)
	fmt.Fprintf(out, "  %-18s %s\n", "Difficulty", difficulty)
	fmt.Fprintf(out, "  %-18s %d\n", "Aim sensitivity", p.Settings.Sensitivity)
	fmt.Fprintf(out, "  %-18s %d\n", "Music volume", p.Settings.MusicVolume)
	fmt.Fprintf(out, "  %-18s %d\n", "Effects volume", p.Settings.SFXVolume)
}
