package main

import (
	"errors"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/stubro/internal/platform/tui"
)

var playCmd = &cobra.Command{
	Use:   "play [file|-]",
	Short: "Build a level from a chapter and play it",
	Long: `Build a level from a chapter of study text and play it.

The chapter is read from the given file, or from standard input when the
file is "-" or omitted. Plain text and Markdown both work.

Controls:
  W/A/S/D or arrows - Move
  E or Enter        - Close a message
  R                 - Build a new level (after finishing or failing)
  B/Esc             - Back
  Q                 - Quit

Examples:
  stubro play chapters/cells.md
  stubro play notes.txt --generator procedural --difficulty hard
  pbpaste | stubro play --generator library`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	addGeneratorFlags(playCmd)
}

func runPlay(_ *cobra.Command, args []string) {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}

	chapter, piped, err := readChapterArg(path)
	if err != nil {
		fatal("%v", err)
	}

	a, err := setup(true)
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	gen, err := a.buildGenerator()
	if err != nil {
		fatal("%v", err)
	}

	var opts []tea.ProgramOption
	if piped {
		// Stdin carried the chapter; keys come from the terminal.
		opts = append(opts, tea.WithInputTTY())
	}

	a.logger.Info("playing chapter", "chapter", chapter.Name, "generator", gen.Name(), "user", a.user)
	if err := tui.Run(chapter, a.gameOptions(gen), a.runtimeConfig(), opts...); err != nil {
		a.Close()
		fatal("%v", err)
	}
}

// readChapterArg reads a chapter from a file, or from stdin for "-".
// piped reports whether stdin was consumed.
func readChapterArg(path string) (chapter tui.Chapter, piped bool, err error) {
	if path != "-" {
		chapter, err = tui.ReadChapter(path)
		return chapter, false, err
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return tui.Chapter{}, false, errors.New("no chapter given: pass a file or pipe text on stdin")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return tui.Chapter{}, false, err
	}
	return tui.Chapter{Name: "stdin", Content: strings.TrimSpace(string(data))}, true, nil
}
