package config

import (
	_ "embed"
)

// DefaultHoldWindowMS outlasts the usual terminal auto-repeat delay
// (250-500 ms), so a held direction keeps moving until repeats start.
const DefaultHoldWindowMS = 500

//go:embed defaults/conquest.yaml
var defaultConquestYAML []byte

// DefaultConquestConfig returns the default Chapter Conquest configuration.
func DefaultConquestConfig() ConquestConfig {
	return ConquestConfig{
		Engine: EngineSettings{
			TileSize:        40,
			PlayerSizeRatio: 0.8,
			PlayerSpeed:     2,
			RewardPoints:    10,
		},
		Controls: ControlsConfig{
			FPS:          60,
			HoldWindowMS: DefaultHoldWindowMS,
		},
		Generator: GeneratorConfig{
			Backend: "gemini",
			Gemini: GeminiConfig{
				Model:          "gemini-2.5-flash",
				Endpoint:       "https://generativelanguage.googleapis.com/v1beta",
				TimeoutSeconds: 120,
				MaxRetries:     2,
				Temperature:    0.7,
			},
			Procedural: ProceduralConfig{
				Difficulty:   DifficultyNormal,
				Width:        15,
				Height:       11,
				WallDensity:  0.2,
				Interactions: 3,
			},
		},
		Tokens: TokensConfig{
			Initial:   100,
			LevelCost: 5,
		},
	}
}

// GetDefaultYAML returns the embedded default YAML.
func GetDefaultYAML() []byte {
	return defaultConquestYAML
}
