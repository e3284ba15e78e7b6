package config

import (
	"fmt"
	"math"
	"strings"
)

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParseDifficulty converts a flag value into a preset. Empty means normal.
func ParseDifficulty(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return p, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (want easy, normal or hard)", s)
	}
}

// LevelForPreset returns the difficulty level (0.0 to 1.0) of a preset.
func LevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyHard:
		return 1.0
	default:
		return 0.5
	}
}

// Procedural bounds interpolated by difficulty level.
const (
	minWidth, maxWidth               = 11, 21
	minHeight, maxHeight             = 7, 13
	minDensity, maxDensity           = 0.10, 0.30
	minInteractions, maxInteractions = 2, 5
)

// ApplyProceduralPreset sizes the procedural generator for a preset.
func ApplyProceduralPreset(cfg *ProceduralConfig, preset DifficultyPreset) {
	level := LevelForPreset(preset)
	cfg.Difficulty = preset
	cfg.Width = lerpOdd(minWidth, maxWidth, level)
	cfg.Height = lerpOdd(minHeight, maxHeight, level)
	cfg.WallDensity = minDensity + level*(maxDensity-minDensity)
	cfg.Interactions = int(math.Round(float64(minInteractions) + level*float64(maxInteractions-minInteractions)))
}

// lerpOdd interpolates between two sizes and rounds to an odd number.
func lerpOdd(lo, hi int, level float64) int {
	level = clampF(level, 0.0, 1.0)
	v := int(math.Round(float64(lo) + level*float64(hi-lo)))
	if v%2 == 0 {
		v++
	}
	return v
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
