package formats

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vovakirdan/stubro/internal/core"
	"github.com/vovakirdan/stubro/internal/games/conquest"
)

// WireLevel is the JSON level document produced by the AI level designer.
type WireLevel struct {
	Title        string            `json:"title"`
	Goal         string            `json:"goal"`
	Grid         [][]WireTile      `json:"grid"`
	PlayerStart  WirePoint         `json:"player_start"`
	Interactions []WireInteraction `json:"interactions"`
}

// WireTile is one grid cell.
type WireTile struct {
	Type string `json:"type"`
}

// WirePoint is a grid coordinate.
type WirePoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// WireInteraction is a question checkpoint.
type WireInteraction struct {
	ID             int       `json:"id"`
	Position       WirePoint `json:"position"`
	Prompt         string    `json:"prompt"`
	CorrectAnswer  string    `json:"correct_answer"`
	SuccessMessage string    `json:"success_message"`
	FailureMessage string    `json:"failure_message"`
}

// ParseJSON decodes a wire level. Markdown code fences around the document
// are tolerated. Unknown tile types are an error.
func ParseJSON(data []byte) (*conquest.Level, error) {
	var wl WireLevel
	if err := json.Unmarshal(stripFence(data), &wl); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	level := &conquest.Level{
		Title:       wl.Title,
		Goal:        wl.Goal,
		Grid:        make([][]conquest.Tile, len(wl.Grid)),
		PlayerStart: core.P(wl.PlayerStart.X, wl.PlayerStart.Y),
	}

	for y, row := range wl.Grid {
		level.Grid[y] = make([]conquest.Tile, len(row))
		for x, wt := range row {
			t, ok := conquest.ParseTile(wt.Type)
			if !ok {
				return nil, fmt.Errorf("unknown tile type %q at (%d,%d)", wt.Type, x, y)
			}
			level.Grid[y][x] = t
		}
	}

	for _, wi := range wl.Interactions {
		level.Interactions = append(level.Interactions, conquest.Interaction{
			ID:             wi.ID,
			Position:       core.P(wi.Position.X, wi.Position.Y),
			Prompt:         wi.Prompt,
			CorrectAnswer:  wi.CorrectAnswer,
			SuccessMessage: orDefault(wi.SuccessMessage, defaultSuccess),
			FailureMessage: orDefault(wi.FailureMessage, defaultFailure),
		})
	}

	return level, nil
}

// MarshalJSON encodes a level as a wire document.
func MarshalJSON(level *conquest.Level) ([]byte, error) {
	wl := WireLevel{
		Title:        level.Title,
		Goal:         level.Goal,
		Grid:         make([][]WireTile, len(level.Grid)),
		PlayerStart:  WirePoint{X: level.PlayerStart.X, Y: level.PlayerStart.Y},
		Interactions: make([]WireInteraction, 0, len(level.Interactions)),
	}
	for y, row := range level.Grid {
		wl.Grid[y] = make([]WireTile, len(row))
		for x, t := range row {
			wl.Grid[y][x] = WireTile{Type: t.String()}
		}
	}
	for _, it := range level.Interactions {
		wl.Interactions = append(wl.Interactions, WireInteraction{
			ID:             it.ID,
			Position:       WirePoint{X: it.Position.X, Y: it.Position.Y},
			Prompt:         it.Prompt,
			CorrectAnswer:  it.CorrectAnswer,
			SuccessMessage: it.SuccessMessage,
			FailureMessage: it.FailureMessage,
		})
	}
	return json.MarshalIndent(wl, "", "  ")
}

func stripFence(data []byte) []byte {
	s := strings.TrimSpace(string(data))
	if !strings.HasPrefix(s, "```") {
		return data
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return []byte(strings.TrimSpace(s))
}
