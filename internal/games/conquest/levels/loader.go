// Package levels provides level loading for Chapter Conquest: curated level
// files on disk and the built-in library.
// This package depends on conquest but conquest does not depend on levels.
package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/vovakirdan/stubro/internal/games/conquest"
	"github.com/vovakirdan/stubro/internal/games/conquest/levels/formats"
)

//go:embed library/*.yaml
var libraryFS embed.FS

// Entry is a loaded level file.
type Entry struct {
	ID       string
	Keywords []string
	Level    *conquest.Level
	FilePath string
}

// Loader handles loading levels from a file tree.
type Loader struct {
	fsys fs.FS
	root string
}

// NewLoader creates a loader for a directory on disk.
func NewLoader(root string) *Loader {
	return &Loader{fsys: os.DirFS(root), root: root}
}

// Library returns a loader over the built-in level library.
func Library() *Loader {
	sub, err := fs.Sub(libraryFS, "library")
	if err != nil {
		panic(fmt.Sprintf("levels: embedded library: %v", err))
	}
	return &Loader{fsys: sub, root: "library"}
}

// LoadAll recursively scans and loads all level files.
// Invalid files are skipped. Returns levels sorted by ID.
func (l *Loader) LoadAll() ([]Entry, error) {
	var entries []Entry

	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(path.Ext(p))
		if !isSupportedExtension(ext) {
			return nil
		}

		entry, err := l.LoadFile(p)
		if err != nil {
			return nil
		}

		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.root, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID < entries[j].ID
	})

	return entries, nil
}

// LoadFile loads and validates a single level file relative to the root.
func (l *Loader) LoadFile(p string) (Entry, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return Entry{}, fmt.Errorf("reading file %s: %w", p, err)
	}

	ext := strings.ToLower(path.Ext(p))
	parsed, err := parseByExtension(data, ext)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing file %s: %w", p, err)
	}
	if err := parsed.Level.Validate(); err != nil {
		return Entry{}, fmt.Errorf("validating file %s: %w", p, err)
	}

	id := parsed.ID
	if id == "" {
		id = strings.TrimSuffix(path.Base(p), path.Ext(p))
	}

	return Entry{
		ID:       id,
		Keywords: parsed.Keywords,
		Level:    parsed.Level,
		FilePath: path.Join(l.root, p),
	}, nil
}

// LoadByID loads a specific level by ID.
func (l *Loader) LoadByID(id string) (Entry, error) {
	entries, err := l.LoadAll()
	if err != nil {
		return Entry{}, err
	}

	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}

	return Entry{}, fmt.Errorf("level not found: %s", id)
}

// ListIDs returns all level IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	entries, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids, nil
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// parseByExtension routes to the correct parser.
func parseByExtension(data []byte, ext string) (formats.Level, error) {
	switch ext {
	case ".yaml", ".yml":
		return formats.ParseYAML(data)
	case ".json":
		level, err := formats.ParseJSON(data)
		if err != nil {
			return formats.Level{}, err
		}
		return formats.Level{Level: level}, nil
	default:
		return formats.Level{}, fmt.Errorf("unsupported extension: %s", ext)
	}
}
