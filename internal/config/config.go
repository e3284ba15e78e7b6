// Package config provides YAML-based configuration loading and difficulty
// presets for Chapter Conquest.
package config

// ConquestConfig contains all configuration for the Chapter Conquest game.
type ConquestConfig struct {
	Engine    EngineSettings  `yaml:"engine"`
	Controls  ControlsConfig  `yaml:"controls"`
	Generator GeneratorConfig `yaml:"generator"`
	Tokens    TokensConfig    `yaml:"tokens"`
}

// EngineSettings defines the simulation constants.
type EngineSettings struct {
	TileSize        float64 `yaml:"tile_size"`
	PlayerSizeRatio float64 `yaml:"player_size_ratio"`
	PlayerSpeed     float64 `yaml:"player_speed"` // Units per tick per held direction
	RewardPoints    int     `yaml:"reward_points"`
}

// ControlsConfig defines terminal input and frame timing.
type ControlsConfig struct {
	FPS int `yaml:"fps"`
	// HoldWindowMS is how long a key counts as held after its last press or
	// auto-repeat. Terminals do not report key releases.
	HoldWindowMS int `yaml:"hold_window_ms"`
}

// GeneratorConfig selects and tunes the level generator backends.
type GeneratorConfig struct {
	Backend    string           `yaml:"backend"` // "gemini", "library" or "procedural"
	Gemini     GeminiConfig     `yaml:"gemini"`
	Library    LibraryConfig    `yaml:"library"`
	Procedural ProceduralConfig `yaml:"procedural"`
}

// GeminiConfig defines the AI level designer client.
type GeminiConfig struct {
	Model          string  `yaml:"model"`
	Endpoint       string  `yaml:"endpoint"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxRetries     int     `yaml:"max_retries"`
	Temperature    float64 `yaml:"temperature"`
}

// LibraryConfig defines the curated level library.
type LibraryConfig struct {
	Dir string `yaml:"dir"` // Extra level directory, searched with the built-in levels
}

// ProceduralConfig defines the offline level generator.
type ProceduralConfig struct {
	Difficulty   DifficultyPreset `yaml:"difficulty"`
	Width        int              `yaml:"width"`
	Height       int              `yaml:"height"`
	WallDensity  float64          `yaml:"wall_density"` // Share of interior cells turned into walls
	Interactions int              `yaml:"interactions"`
}

// TokensConfig defines the token economy.
type TokensConfig struct {
	Initial   int `yaml:"initial"`    // Balance granted on first use
	LevelCost int `yaml:"level_cost"` // Price of one generated level
}
