package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stubro/internal/registry"
)

var generatorsCmd = &cobra.Command{
	Use:   "generators",
	Short: "List level generators",
	Long:  `Shows the level generator backends that can build a level from a chapter.`,
	Run:   runGenerators,
}

func runGenerators(_ *cobra.Command, _ []string) {
	gens := registry.List()

	if len(gens) == 0 {
		fmt.Println("No generators available.")
		return
	}

	fmt.Println("Available generators:")
	fmt.Println()

	// Calculate column widths
	maxIDLen, maxTitleLen := 2, 5 // "ID", "Title" headers
	for _, g := range gens {
		maxIDLen = max(maxIDLen, len(g.ID))
		maxTitleLen = max(maxTitleLen, len(g.Title))
	}

	fmt.Printf("  %-*s  %-*s  %-7s  %s\n", maxIDLen, "ID", maxTitleLen, "Title", "Tokens", "Description")
	fmt.Printf("  %-*s  %-*s  %-7s  %s\n", maxIDLen, "--", maxTitleLen, "-----", "------", "-----------")

	for _, g := range gens {
		cost := "free"
		if g.Online {
			cost = "yes"
		}
		fmt.Printf("  %-*s  %-*s  %-7s  %s\n", maxIDLen, g.ID, maxTitleLen, g.Title, cost, g.Description)
	}

	fmt.Println()
	fmt.Println("Run 'stubro play <chapter> --generator <id>' to use one.")
}
