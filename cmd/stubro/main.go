// stubro is the terminal edition of Chapter Conquest: it turns a study
// chapter into a maze of questions you walk through in your terminal.
//
// Usage:
//
//	stubro play <file|->      - Build a level from a chapter and play it
//	stubro menu               - Pick a chapter or a curated level interactively
//	stubro serve              - Start SSH server for remote play
//	stubro scores             - Show the best runs
//	stubro generators         - List level generators
//	stubro generate <file>    - Build a level and save it as a level file
//	stubro tokens [grant N]   - Show or top up your token balance
//	stubro key set|clear|status - Manage the Gemini API key
//
// Global flags:
//
//	--fps <rate>       - Set display refresh rate (default: from config)
//	--seed <value>     - Set RNG seed for reproducible levels
//	--db <path>        - Set database path (default: ~/.stubro/stubro.db)
//	--config <path>    - Use a custom config YAML
//	--user <name>      - Player name (default: $USER)
//	--log-file <path>  - Write logs to a file
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import generators to register them
	_ "github.com/vovakirdan/stubro/internal/generator"
)

var (
	// Global flags
	flagFPS     int
	flagSeed    int64
	flagDBPath  string
	flagConfig  string
	flagUser    string
	flagLogFile string
	flagDebug   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stubro",
	Short: "Chapter Conquest - turn your study notes into a terminal game",
	Long: `Chapter Conquest builds a small maze from a chapter of study text.
Walk the maze, answer the questions hidden in it and find the exit.

Available commands:
  play        - Build a level from a chapter and play it
  menu        - Interactive chapter picker
  serve       - Start SSH server for remote play
  scores      - View the best runs
  generators  - List level generators
  generate    - Build a level and save it to a file
  tokens      - Show or top up your token balance
  key         - Manage the Gemini API key

Examples:
  stubro play chapters/photosynthesis.md
  cat notes.txt | stubro play --generator procedural
  stubro menu --content-dir ./chapters
  stubro serve --ssh :2222
  stubro tokens grant 50`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Display refresh rate (0 = from config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.stubro/stubro.db", "Path to the runs and tokens database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "Player name (default: $USER)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Log file (default: ~/.stubro/stubro.log for interactive commands)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(generatorsCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(keyCmd)
}
