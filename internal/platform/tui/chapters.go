package tui

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vovakirdan/stubro/internal/games/conquest"
	"github.com/vovakirdan/stubro/internal/games/conquest/levels"
)

// chapterExtensions are the study text files picked up from a directory.
var chapterExtensions = map[string]bool{".txt": true, ".md": true, ".markdown": true}

// ReadChapter loads one study text file. The chapter is named after the file.
func ReadChapter(path string) (Chapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Chapter{}, fmt.Errorf("tui: read chapter: %w", err)
	}
	return Chapter{Name: chapterName(path), Content: string(data)}, nil
}

// LoadChapters reads the study texts in dir, sorted by name. A missing
// directory yields no chapters.
func LoadChapters(dir string) ([]Chapter, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tui: list chapters: %w", err)
	}

	var chapters []Chapter
	for _, e := range entries {
		if e.IsDir() || !chapterExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		ch, err := ReadChapter(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, ch)
	}

	sort.Slice(chapters, func(i, j int) bool {
		return chapters[i].Name < chapters[j].Name
	})
	return chapters, nil
}

// LibraryChapters turns curated levels into playable chapters that skip
// generation.
func LibraryChapters(entries []levels.Entry) []Chapter {
	chapters := make([]Chapter, 0, len(entries))
	for _, e := range entries {
		chapters = append(chapters, Chapter{
			Name:    e.Level.Title,
			Content: strings.Join(e.Keywords, " "),
			Level:   e.Level,
		})
	}
	return chapters
}

// chapterName turns "02_cell-biology.md" into "02 cell biology".
func chapterName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.NewReplacer("_", " ", "-", " ").Replace(base)
}

// staticGenerator serves a pre-built level.
type staticGenerator struct {
	level *conquest.Level
}

func (g staticGenerator) Name() string { return "library" }

func (g staticGenerator) Generate(ctx context.Context, _ conquest.Request) (*conquest.Level, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.level, nil
}
