package generator

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/stubro/internal/config"
	"github.com/vovakirdan/stubro/internal/core"
	"github.com/vovakirdan/stubro/internal/games/conquest"
	"github.com/vovakirdan/stubro/internal/registry"
)

func init() {
	registry.Register(registry.Info{
		ID:          "procedural",
		Title:       "Offline Builder",
		Description: "Generates a maze with fill-in-the-blank questions, no network needed",
	}, func(deps registry.Deps) (conquest.Generator, error) {
		return NewProcedural(deps.Config.Procedural, deps.Logger), nil
	})
}

const (
	minGridWidth  = 7
	minGridHeight = 5
	blank         = "_____"
)

// Procedural builds seeded mazes with cloze questions taken from the text.
type Procedural struct {
	cfg    config.ProceduralConfig
	logger *log.Logger
}

// NewProcedural creates the offline backend. An unsized config is sized
// from its difficulty preset.
func NewProcedural(cfg config.ProceduralConfig, logger *log.Logger) *Procedural {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		ApplyPreset(&cfg)
	}
	cfg.Width = max(cfg.Width, minGridWidth)
	cfg.Height = max(cfg.Height, minGridHeight)
	return &Procedural{cfg: cfg, logger: orDiscard(logger)}
}

// ApplyPreset sizes cfg from its difficulty, defaulting to normal.
func ApplyPreset(cfg *config.ProceduralConfig) {
	preset, err := config.ParseDifficulty(string(cfg.Difficulty))
	if err != nil {
		preset = config.DifficultyNormal
	}
	config.ApplyProceduralPreset(cfg, preset)
}

// Name returns the backend ID.
func (p *Procedural) Name() string { return "procedural" }

// Generate builds a level. The same content and seed give the same level;
// a zero seed is derived from the content.
func (p *Procedural) Generate(ctx context.Context, req conquest.Request) (*conquest.Level, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed := req.Seed
	if seed == 0 {
		h := fnv.New64a()
		h.Write([]byte(req.Content))
		seed = int64(h.Sum64() >> 1)
	}
	rng := rand.New(rand.NewSource(seed))

	w, h := p.cfg.Width, p.cfg.Height
	start := core.P(1, 1)
	grid := borderedGrid(w, h)
	carveWalls(grid, start, p.cfg.WallDensity, rng)

	dist := distances(grid, start)
	exit := farthest(dist)
	grid[exit.Y][exit.X] = conquest.TileExit

	questions := clozeQuestions(req.Content, p.cfg.Interactions, rng)
	spots := interactionSpots(dist, start, exit, len(questions))

	level := &conquest.Level{
		Grid:        grid,
		PlayerStart: start,
	}
	for i, q := range questions[:len(spots)] {
		q.ID = i + 1
		q.Position = spots[i]
		grid[q.Position.Y][q.Position.X] = conquest.TileInteraction
		level.Interactions = append(level.Interactions, q)
	}

	topic := topicWord(req.Content)
	level.Title = "Conquest of " + capitalize(topic)
	level.Goal = fmt.Sprintf("Answer %d questions about %s and find the exit.", len(level.Interactions), topic)
	if len(level.Interactions) == 0 {
		level.Goal = "Find the exit."
	}

	p.logger.Debug("procedural level built", "seed", seed, "size", fmt.Sprintf("%dx%d", w, h),
		"interactions", len(level.Interactions))
	return level, nil
}

// --- Maze ---

func borderedGrid(w, h int) [][]conquest.Tile {
	grid := make([][]conquest.Tile, h)
	for y := range grid {
		grid[y] = make([]conquest.Tile, w)
		for x := range grid[y] {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				grid[y][x] = conquest.TileWall
			}
		}
	}
	return grid
}

// carveWalls turns a share of interior cells into walls, skipping any wall
// that would cut off part of the floor.
func carveWalls(grid [][]conquest.Tile, start core.Point, density float64, rng *rand.Rand) {
	var interior []core.Point
	for y := 1; y < len(grid)-1; y++ {
		for x := 1; x < len(grid[y])-1; x++ {
			if p := core.P(x, y); p.Manhattan(start) > 1 {
				interior = append(interior, p)
			}
		}
	}
	rng.Shuffle(len(interior), func(i, j int) {
		interior[i], interior[j] = interior[j], interior[i]
	})

	target := int(density * float64(len(interior)))
	placed := 0
	for _, c := range interior {
		if placed >= target {
			break
		}
		grid[c.Y][c.X] = conquest.TileWall
		if !connected(grid, start) {
			grid[c.Y][c.X] = conquest.TileFloor
			continue
		}
		placed++
	}
}

var steps = [4]core.Point{{X: 0, Y: -1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 1, Y: 0}}

// distances runs a BFS from start over passable tiles. Unreachable cells
// are absent from the result.
func distances(grid [][]conquest.Tile, start core.Point) map[core.Point]int {
	dist := map[core.Point]int{start: 0}
	queue := []core.Point{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, s := range steps {
			next := cur.Add(s.X, s.Y)
			if next.Y < 0 || next.Y >= len(grid) || next.X < 0 || next.X >= len(grid[next.Y]) {
				continue
			}
			if !grid[next.Y][next.X].Passable() {
				continue
			}
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

func connected(grid [][]conquest.Tile, start core.Point) bool {
	floor := 0
	for _, row := range grid {
		for _, t := range row {
			if t.Passable() {
				floor++
			}
		}
	}
	return len(distances(grid, start)) == floor
}

// farthest returns the reachable cell with the largest distance, preferring
// the topmost then leftmost cell on ties.
func farthest(dist map[core.Point]int) core.Point {
	var best core.Point
	bestDist := -1
	for p, d := range dist {
		if d > bestDist || (d == bestDist && (p.Y < best.Y || (p.Y == best.Y && p.X < best.X))) {
			best, bestDist = p, d
		}
	}
	return best
}

// interactionSpots spreads n cells along the BFS distance order, leaving
// out the start and the exit.
func interactionSpots(dist map[core.Point]int, start, exit core.Point, n int) []core.Point {
	var cells []core.Point
	for p := range dist {
		if p != start && p != exit {
			cells = append(cells, p)
		}
	}
	sort.Slice(cells, func(i, j int) bool {
		a, b := cells[i], cells[j]
		if dist[a] != dist[b] {
			return dist[a] < dist[b]
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	n = min(n, len(cells))
	spots := make([]core.Point, 0, n)
	for i := 0; i < n; i++ {
		spots = append(spots, cells[(i+1)*len(cells)/(n+1)])
	}
	return spots
}

// --- Questions ---

var stopwords = map[string]bool{
	"about": true, "above": true, "after": true, "again": true, "among": true, "because": true,
	"before": true, "being": true, "below": true, "between": true, "could": true, "during": true,
	"every": true, "first": true, "their": true, "there": true, "these": true, "those": true,
	"through": true, "under": true, "until": true, "which": true, "while": true, "where": true,
	"would": true, "other": true, "called": true, "known": true, "using": true, "often": true,
	"since": true, "should": true, "always": true, "another": true, "however": true, "without": true,
}

// significant reports whether a lowercase word can serve as an answer.
func significant(w string) bool {
	if len([]rune(w)) < 5 || stopwords[w] {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// splitSentences breaks text at sentence punctuation and blank lines.
func splitSentences(text string) []string {
	var out []string
	var sb strings.Builder
	flush := func() {
		if s := strings.Join(strings.Fields(sb.String()), " "); s != "" {
			out = append(out, s)
		}
		sb.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		sb.WriteRune(r)
		switch {
		case r == '.' || r == '!' || r == '?':
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				flush()
			}
		case r == '\n' && i+1 < len(runes) && runes[i+1] == '\n':
			flush()
		}
	}
	flush()
	return out
}

// clozeQuestions builds up to n fill-in-the-blank interactions with
// distinct answers, kept in text order.
func clozeQuestions(content string, n int, rng *rand.Rand) []conquest.Interaction {
	type candidate struct {
		order    int
		sentence string
		answer   string
	}

	var cands []candidate
	for i, s := range splitSentences(content) {
		words := splitWords(s)
		if len(words) < 6 || len(words) > 40 {
			continue
		}
		answer := ""
		for _, w := range words {
			lw := strings.ToLower(w)
			if significant(lw) && len([]rune(lw)) > len([]rune(answer)) {
				answer = lw
			}
		}
		if answer != "" {
			cands = append(cands, candidate{order: i, sentence: s, answer: answer})
		}
	}

	rng.Shuffle(len(cands), func(i, j int) {
		cands[i], cands[j] = cands[j], cands[i]
	})

	used := make(map[string]bool)
	var picked []candidate
	for _, c := range cands {
		if len(picked) >= n {
			break
		}
		if used[c.answer] {
			continue
		}
		used[c.answer] = true
		picked = append(picked, c)
	}
	sort.Slice(picked, func(i, j int) bool {
		return picked[i].order < picked[j].order
	})

	out := make([]conquest.Interaction, 0, len(picked))
	for _, c := range picked {
		first := []rune(c.answer)[0]
		out = append(out, conquest.Interaction{
			Prompt:         "Fill in the blank: " + blankOut(c.sentence, c.answer),
			CorrectAnswer:  c.answer,
			SuccessMessage: "Correct! " + c.sentence,
			FailureMessage: fmt.Sprintf("Not quite. Hint: it starts with %q and has %d letters.",
				string(first), len([]rune(c.answer))),
		})
	}
	return out
}

// blankOut replaces the first whole-word, case-insensitive occurrence of
// word in sentence.
func blankOut(sentence, word string) string {
	runes := []rune(sentence)
	target := []rune(word)
	isWord := func(i int) bool {
		return i >= 0 && i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]))
	}

	for i := 0; i+len(target) <= len(runes); i++ {
		if isWord(i-1) || isWord(i+len(target)) {
			continue
		}
		if strings.EqualFold(string(runes[i:i+len(target)]), word) {
			return string(runes[:i]) + blank + string(runes[i+len(target):])
		}
	}
	return sentence
}

// topicWord returns the most frequent significant word, alphabetical on ties.
func topicWord(content string) string {
	counts := make(map[string]int)
	for _, w := range splitWords(strings.ToLower(content)) {
		if significant(w) {
			counts[w]++
		}
	}

	best, bestN := "", 0
	for w, n := range counts {
		if n > bestN || (n == bestN && w < best) {
			best, bestN = w, n
		}
	}
	if best == "" {
		return "the chapter"
	}
	return best
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
