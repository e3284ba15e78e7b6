package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stubro/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresMine  bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [user]",
	Short: "Show the best runs",
	Long: `Display the best completed runs of all players, or the recent runs
of one player together with their statistics.

Examples:
  stubro scores
  stubro scores ada
  stubro scores --mine --limit 20`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of runs to show")
	scoresCmd.Flags().BoolVar(&flagScoresMine, "mine", false, "Show your own runs")
}

func runScores(_ *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fatal("opening database: %v", err)
	}
	defer store.Close()

	user := ""
	switch {
	case len(args) == 1:
		user = args[0]
	case flagScoresMine:
		user = currentUser()
	}

	var runs []storage.Run
	if user == "" {
		runs, err = store.TopRuns(flagScoresLimit)
		fmt.Println("High Scores - Top runs")
	} else {
		runs, err = store.RunsByUser(user, flagScoresLimit)
		fmt.Printf("Runs of %s\n", user)
	}
	if err != nil {
		store.Close()
		fatal("retrieving runs: %v", err)
	}
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'stubro play <chapter>' to set the first high score!")
		return
	}

	printRuns(os.Stdout, runs)

	if user == "" {
		return
	}
	stats, err := store.Stats(user)
	if err != nil {
		return
	}
	fmt.Println()
	fmt.Printf("Runs: %d  Completed: %d  Best: %d  Total: %d\n",
		stats.Runs, stats.Completed, stats.HighScore, stats.TotalScore)
	if !stats.LastPlayed.IsZero() {
		fmt.Printf("Last played: %s\n", stats.LastPlayed.Local().Format("2006-01-02 15:04"))
	}
}

func printRuns(w io.Writer, runs []storage.Run) {
	fmt.Fprintf(w, "  %-4s  %-12s  %-28s  %-6s  %-6s  %-9s  %s\n", "Rank", "Player", "Level", "Score", "Solved", "Outcome", "Date")
	fmt.Fprintf(w, "  %-4s  %-12s  %-28s  %-6s  %-6s  %-9s  %s\n", "----", "------", "-----", "-----", "------", "-------", "----")
	for i, r := range runs {
		fmt.Fprintf(w, "  %-4d  %-12s  %-28s  %-6d  %-6s  %-9s  %s\n",
			i+1, truncate(r.User, 12), truncate(r.Title, 28), r.Score,
			fmt.Sprintf("%d/%d", r.Solved, r.Total), r.Outcome,
			r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
