package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var difficultiesCmd = &cobra.Command{
	Use:     "difficulties",
	Aliases: []string{"list"},
	Short:   "List difficulty profiles",
	Long:    `Shows every difficulty with its grid, movement, time limit and lives.`,
	Args:    cobra.NoArgs,
	Run:     runDifficulties,
}

func runDifficulties(cmd *cobra.Command, _ []string) {
	cfg := loadConfig(log.New(io.Discard))
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Difficulties:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-14s  %-6s  %-10s  %-6s  %s\n", "Name", "Grid", "Movement", "Time", "Lives")
	fmt.Fprintf(out, "  %-14s  %-6s  %-10s  %-6s  %s\n", "----", "----", "--------", "----", "-----")

	for _, name := range cfg.Difficulties.Names() {
		p := cfg.Difficulties.Lookup(name)
		grid := fmt.Sprintf("%dx%d", p.GridSize, p.GridSize)
		fmt.Fprintf(out, "  %-14s  %-6s  %-10s  %-6s  %d\n", name, grid, p.Movement, fmt.Sprintf("%ds", p.TimeLimit), p.Lives)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run 'junkshot play --difficulty <name>' to play.")
}
