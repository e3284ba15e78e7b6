package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stubro/internal/games/conquest"
	"github.com/vovakirdan/stubro/internal/games/conquest/levels/formats"
)

var (
	flagOutput   string
	flagID       string
	flagKeywords []string
)

var generateCmd = &cobra.Command{
	Use:   "generate <file|->",
	Short: "Build a level and save it as a level file",
	Long: `Build a level from a chapter without playing it and write it as a
level file. Files ending in .json are written in the wire format, anything
else as YAML. Without --output the YAML goes to standard output.

Saved YAML levels can be dropped into the level library directory
(~/.stubro/levels by default) to appear in the menu.

Examples:
  stubro generate chapters/cells.md -o ~/.stubro/levels/cells.yaml --keywords cell,membrane
  stubro generate notes.txt --generator procedural --seed 7`,
	Args: cobra.ExactArgs(1),
	Run:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file (.yaml, .yml or .json; default: stdout)")
	generateCmd.Flags().StringVar(&flagID, "id", "", "Level ID (default: derived from the file name)")
	generateCmd.Flags().StringSliceVar(&flagKeywords, "keywords", nil, "Library keywords for the level")
	addGeneratorFlags(generateCmd)
}

func runGenerate(_ *cobra.Command, args []string) {
	chapter, _, err := readChapterArg(args[0])
	if err != nil {
		fatal("%v", err)
	}

	a, err := setup(false)
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	gen, err := a.buildGenerator()
	if err != nil {
		a.Close()
		fatal("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	level, err := conquest.Generate(ctx, gen, conquest.Request{
		Content: chapter.Content,
		User:    a.user,
		Seed:    flagSeed,
	})
	if err != nil {
		a.Close()
		fatal("%v", err)
	}
	a.logger.Info("level generated", "generator", gen.Name(), "title", level.Title)

	data, err := encodeLevel(level, chapter.Name)
	if err != nil {
		a.Close()
		fatal("%v", err)
	}

	if flagOutput == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.MkdirAll(filepath.Dir(flagOutput), 0o755); err != nil {
		a.Close()
		fatal("%v", err)
	}
	if err := os.WriteFile(flagOutput, data, 0o644); err != nil {
		a.Close()
		fatal("%v", err)
	}
	fmt.Printf("Saved %q to %s\n", level.Title, flagOutput)
}

// encodeLevel picks the file format from the output extension.
func encodeLevel(level *conquest.Level, name string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(flagOutput), ".json") {
		return formats.MarshalJSON(level)
	}

	id := flagID
	if id == "" {
		id = levelID(name)
	}
	return formats.MarshalYAML(formats.Level{ID: id, Keywords: flagKeywords, Level: level})
}

// levelID turns a chapter name into a file-friendly ID.
func levelID(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	id := strings.TrimSuffix(b.String(), "-")
	if id == "" {
		return "level"
	}
	return id
}
