package generator

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/stubro/internal/games/conquest"
	"github.com/vovakirdan/stubro/internal/games/conquest/levels"
	"github.com/vovakirdan/stubro/internal/registry"
)

func init() {
	registry.Register(registry.Info{
		ID:          "library",
		Title:       "Level Library",
		Description: "Picks the curated level that best matches your chapter",
	}, func(deps registry.Deps) (conquest.Generator, error) {
		return NewLibrary(deps.Config.Library.Dir, deps.Logger)
	})
}

// Library serves curated levels, matched to the content by keywords.
type Library struct {
	entries []levels.Entry
	logger  *log.Logger
}

// NewLibrary loads the built-in levels plus the levels in dir, if set.
// A missing dir is not an error.
func NewLibrary(dir string, logger *log.Logger) (*Library, error) {
	logger = orDiscard(logger)
	entries, err := levels.Library().LoadAll()
	if err != nil {
		return nil, err
	}

	if dir != "" {
		extra, err := levels.NewLoader(dir).LoadAll()
		switch {
		case err == nil:
			entries = mergeEntries(entries, extra)
		case errors.Is(err, os.ErrNotExist):
			logger.Debug("level directory not found", "dir", dir)
		default:
			return nil, err
		}
	}

	if len(entries) == 0 {
		return nil, errors.New("generator: level library is empty")
	}
	return &Library{entries: entries, logger: logger}, nil
}

// mergeEntries adds extra entries; an extra entry replaces a built-in one
// with the same ID.
func mergeEntries(base, extra []levels.Entry) []levels.Entry {
	byID := make(map[string]int, len(base))
	for i, e := range base {
		byID[e.ID] = i
	}
	for _, e := range extra {
		if i, ok := byID[e.ID]; ok {
			base[i] = e
			continue
		}
		byID[e.ID] = len(base)
		base = append(base, e)
	}
	sort.Slice(base, func(i, j int) bool {
		return base[i].ID < base[j].ID
	})
	return base
}

// Name returns the backend ID.
func (l *Library) Name() string { return "library" }

// Entries returns the loaded levels.
func (l *Library) Entries() []levels.Entry {
	return l.entries
}

// Generate returns the level sharing the most keywords with the content.
// Ties go to the lowest ID. With no overlap at all the seed picks a level.
func (l *Library) Generate(ctx context.Context, req conquest.Request) (*conquest.Level, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := wordSet(req.Content)
	best, bestScore := -1, 0
	for i, e := range l.entries {
		score := 0
		for _, k := range e.Keywords {
			if words[k] {
				score++
			}
		}
		if score > bestScore || (score == bestScore && best >= 0 && score > 0 && e.ID < l.entries[best].ID) {
			best, bestScore = i, score
		}
	}

	if best < 0 {
		seed := req.Seed
		if seed < 0 {
			seed = -seed
		}
		best = int(seed % int64(len(l.entries)))
	}

	e := l.entries[best]
	l.logger.Debug("library level chosen", "id", e.ID, "matches", bestScore)
	return e.Level, nil
}

// wordSet returns the lowercase words of a text.
func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[w] = true
	}
	return set
}
