// Package formats provides the level file and wire formats of Chapter
// Conquest.
package formats

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/stubro/internal/core"
	"github.com/vovakirdan/stubro/internal/games/conquest"
)

// YAMLLevel represents the YAML structure for a level file.
type YAMLLevel struct {
	ID           string            `yaml:"id"`
	Title        string            `yaml:"title"`
	Goal         string            `yaml:"goal"`
	Keywords     []string          `yaml:"keywords,omitempty"`
	Rows         []string          `yaml:"rows"`
	Start        YAMLPoint         `yaml:"start"`
	Interactions []YAMLInteraction `yaml:"interactions,omitempty"`
}

// YAMLPoint is a grid coordinate.
type YAMLPoint struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// YAMLInteraction represents a question checkpoint in YAML format.
type YAMLInteraction struct {
	ID      int    `yaml:"id"`
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Prompt  string `yaml:"prompt"`
	Answer  string `yaml:"answer"`
	Success string `yaml:"success,omitempty"`
	Failure string `yaml:"failure,omitempty"`
}

// Level is a parsed level file: the playable level plus library metadata.
type Level struct {
	ID       string
	Keywords []string
	Level    *conquest.Level
}

const (
	defaultSuccess = "Correct! Well done."
	defaultFailure = "Not quite. Think about it and try again."
)

// ParseYAML parses a YAML level file. The level is not validated here.
func ParseYAML(data []byte) (Level, error) {
	var yl YAMLLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Level{}, fmt.Errorf("yaml unmarshal: %w", err)
	}

	grid, err := conquest.GridFromRows(yl.Rows)
	if err != nil {
		return Level{}, err
	}

	level := &conquest.Level{
		Title:       yl.Title,
		Goal:        yl.Goal,
		Grid:        grid,
		PlayerStart: core.P(yl.Start.X, yl.Start.Y),
	}

	for _, yi := range yl.Interactions {
		level.Interactions = append(level.Interactions, conquest.Interaction{
			ID:             yi.ID,
			Position:       core.P(yi.X, yi.Y),
			Prompt:         yi.Prompt,
			CorrectAnswer:  yi.Answer,
			SuccessMessage: orDefault(yi.Success, defaultSuccess),
			FailureMessage: orDefault(yi.Failure, defaultFailure),
		})
	}

	keywords := make([]string, 0, len(yl.Keywords))
	for _, k := range yl.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}

	return Level{ID: yl.ID, Keywords: keywords, Level: level}, nil
}

// MarshalYAML encodes a level in the YAML file format.
func MarshalYAML(l Level) ([]byte, error) {
	if l.Level == nil {
		return nil, fmt.Errorf("yaml marshal: no level")
	}

	yl := YAMLLevel{
		ID:       l.ID,
		Title:    l.Level.Title,
		Goal:     l.Level.Goal,
		Keywords: l.Keywords,
		Start:    YAMLPoint{X: l.Level.PlayerStart.X, Y: l.Level.PlayerStart.Y},
	}

	for _, row := range l.Level.Grid {
		var sb strings.Builder
		for _, t := range row {
			sb.WriteRune(t.Rune())
		}
		yl.Rows = append(yl.Rows, sb.String())
	}

	for _, it := range l.Level.Interactions {
		yl.Interactions = append(yl.Interactions, YAMLInteraction{
			ID:      it.ID,
			X:       it.Position.X,
			Y:       it.Position.Y,
			Prompt:  it.Prompt,
			Answer:  it.CorrectAnswer,
			Success: it.SuccessMessage,
			Failure: it.FailureMessage,
		})
	}

	data, err := yaml.Marshal(&yl)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml", ".json"}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
