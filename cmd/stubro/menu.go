package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/stubro/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a chapter or a curated level interactively",
	Long: `Open the chapter picker.

Your chapters are the .txt and .md files in the content directory.
Curated levels from the level library are listed below them and cost no
tokens to play.

Examples:
  stubro menu
  stubro menu --content-dir ~/notes/biology
  stubro menu --generator procedural`,
	Run: runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&flagContentDir, "content-dir", "./chapters", "Directory with chapter files")
	addGeneratorFlags(menuCmd)
}

func runMenu(_ *cobra.Command, _ []string) {
	a, err := setup(true)
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	session, err := a.sessionConfig()
	if err != nil {
		a.Close()
		fatal("%v", err)
	}

	if err := tui.RunSession(session, a.user, a.runtimeConfig()); err != nil {
		a.Close()
		fatal("%v", err)
	}
}

// sessionConfig gathers the chapters and game options of a menu session.
func (a *app) sessionConfig() (tui.SessionConfig, error) {
	gen, err := a.buildGenerator()
	if err != nil {
		return tui.SessionConfig{}, err
	}

	chapters, err := tui.LoadChapters(flagContentDir)
	if err != nil {
		return tui.SessionConfig{}, err
	}
	a.logger.Debug("chapters loaded", "dir", flagContentDir, "count", len(chapters))

	return tui.SessionConfig{
		Game:          a.gameOptions(gen),
		Chapters:      chapters,
		Library:       a.libraryChapters(),
		InitialTokens: a.cfg.Tokens.Initial,
	}, nil
}
