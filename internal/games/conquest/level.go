// Package conquest implements the Chapter Conquest level runtime: a
// real-time tile-grid simulation where the player walks a generated level,
// answers study questions bound to grid cells and heads for the exit.
// This package is UI-agnostic and deterministic.
package conquest

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/stubro/internal/core"
)

// Tile is the static terrain kind of one grid cell.
type Tile uint8

const (
	TileFloor Tile = iota
	TileWall
	TileExit
	TileInteraction
)

// String returns the wire name of the tile kind.
func (t Tile) String() string {
	switch t {
	case TileFloor:
		return "floor"
	case TileWall:
		return "wall"
	case TileExit:
		return "exit"
	case TileInteraction:
		return "interaction"
	default:
		return "unknown"
	}
}

// Passable reports whether the player may occupy the tile.
func (t Tile) Passable() bool {
	return t != TileWall
}

// ParseTile converts a wire name into a Tile.
func ParseTile(s string) (Tile, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "floor":
		return TileFloor, true
	case "wall":
		return TileWall, true
	case "exit":
		return TileExit, true
	case "interaction":
		return TileInteraction, true
	default:
		return TileFloor, false
	}
}

// Interaction is a question-and-answer checkpoint bound to a grid cell.
type Interaction struct {
	ID             int
	Position       core.Point
	Prompt         string
	CorrectAnswer  string
	SuccessMessage string
	FailureMessage string
}

// Level is a generated level. It is immutable once loaded into an Engine.
type Level struct {
	Title        string
	Goal         string
	Grid         [][]Tile // addressed [row][col]
	PlayerStart  core.Point
	Interactions []Interaction
}

// Rows returns the number of grid rows.
func (l *Level) Rows() int {
	return len(l.Grid)
}

// Cols returns the number of grid columns (width of the first row).
func (l *Level) Cols() int {
	if len(l.Grid) == 0 {
		return 0
	}
	return len(l.Grid[0])
}

// TileAt returns the tile at p. The second result is false when p lies
// outside the grid.
func (l *Level) TileAt(p core.Point) (Tile, bool) {
	if p.Y < 0 || p.Y >= len(l.Grid) {
		return TileFloor, false
	}
	row := l.Grid[p.Y]
	if p.X < 0 || p.X >= len(row) {
		return TileFloor, false
	}
	return row[p.X], true
}

// InteractionAt returns the interactions located at p in level order.
func (l *Level) InteractionAt(p core.Point) []Interaction {
	var found []Interaction
	for _, it := range l.Interactions {
		if it.Position == p {
			found = append(found, it)
		}
	}
	return found
}

// ValidationError describes why a level cannot be played.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Validate checks the level shape: a non-empty rectangular grid, a start
// cell inside the grid that is not a wall, an exit tile, unique interaction
// ids and interaction positions inside the grid.
func (l *Level) Validate() error {
	if l == nil || len(l.Grid) == 0 || len(l.Grid[0]) == 0 {
		return ValidationError{Code: "EMPTY_GRID", Message: "level grid has no cells"}
	}

	width := len(l.Grid[0])
	hasExit := false
	for y, row := range l.Grid {
		if len(row) != width {
			return ValidationError{
				Code:    "RAGGED_GRID",
				Message: fmt.Sprintf("row %d has %d tiles, expected %d", y, len(row), width),
			}
		}
		for _, t := range row {
			if t == TileExit {
				hasExit = true
			}
		}
	}
	if !hasExit {
		return ValidationError{Code: "NO_EXIT", Message: "level has no exit tile"}
	}

	start, ok := l.TileAt(l.PlayerStart)
	if !ok {
		return ValidationError{
			Code:    "START_OUT_OF_BOUNDS",
			Message: fmt.Sprintf("player start %s is outside the %dx%d grid", l.PlayerStart, width, len(l.Grid)),
		}
	}
	if !start.Passable() {
		return ValidationError{
			Code:    "START_BLOCKED",
			Message: fmt.Sprintf("player start %s is a wall", l.PlayerStart),
		}
	}

	seen := make(map[int]bool, len(l.Interactions))
	for _, it := range l.Interactions {
		if seen[it.ID] {
			return ValidationError{
				Code:    "DUPLICATE_INTERACTION",
				Message: fmt.Sprintf("interaction id %d is used more than once", it.ID),
			}
		}
		seen[it.ID] = true

		if _, ok := l.TileAt(it.Position); !ok {
			return ValidationError{
				Code:    "INTERACTION_OUT_OF_BOUNDS",
				Message: fmt.Sprintf("interaction %d at %s is outside the grid", it.ID, it.Position),
			}
		}
	}

	return nil
}

// GridFromRows builds a grid from row strings using '#' wall, '.' floor,
// 'E' exit and '?' interaction. Unknown runes are reported as an error.
func GridFromRows(rows []string) ([][]Tile, error) {
	grid := make([][]Tile, len(rows))
	for y, row := range rows {
		grid[y] = make([]Tile, 0, len(row))
		for x, ch := range row {
			t, ok := TileFromRune(ch)
			if !ok {
				return nil, fmt.Errorf("conquest: unknown tile %q at (%d,%d)", ch, x, y)
			}
			grid[y] = append(grid[y], t)
		}
	}
	return grid, nil
}

// TileFromRune maps a level-file rune to a tile.
func TileFromRune(ch rune) (Tile, bool) {
	switch ch {
	case '.', ' ':
		return TileFloor, true
	case '#':
		return TileWall, true
	case 'E':
		return TileExit, true
	case '?':
		return TileInteraction, true
	default:
		return TileFloor, false
	}
}

// Rune returns the level-file rune of a tile.
func (t Tile) Rune() rune {
	switch t {
	case TileWall:
		return '#'
	case TileExit:
		return 'E'
	case TileInteraction:
		return '?'
	default:
		return '.'
	}
}
