package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads Chapter Conquest configuration.
// Search order: customPath -> ~/.stubro/configs/conquest.yaml -> ./configs/conquest.yaml -> embedded default.
// Files may be partial: missing keys keep their default values.
func Load(customPath string) (ConquestConfig, error) {
	cfg := DefaultConquestConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return sanitize(cfg), nil
	}

	// Try user config directory
	if userCfgPath := UserPath("configs", "conquest.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return sanitize(cfg), nil
			}
			cfg = DefaultConquestConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "conquest.yaml")); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return sanitize(cfg), nil
		}
		cfg = DefaultConquestConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultConquestYAML, &cfg); err != nil {
		return DefaultConquestConfig(), nil // Fallback to hardcoded if embed fails
	}
	return sanitize(cfg), nil
}

// UserPath returns a path under ~/.stubro, or empty if home is unavailable.
func UserPath(elem ...string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append([]string{home, ".stubro"}, elem...)...)
}

// sanitize replaces unusable values with defaults.
func sanitize(cfg ConquestConfig) ConquestConfig {
	def := DefaultConquestConfig()

	if cfg.Engine.TileSize <= 0 {
		cfg.Engine.TileSize = def.Engine.TileSize
	}
	if cfg.Engine.PlayerSizeRatio <= 0 || cfg.Engine.PlayerSizeRatio > 1 {
		cfg.Engine.PlayerSizeRatio = def.Engine.PlayerSizeRatio
	}
	if cfg.Engine.PlayerSpeed <= 0 {
		cfg.Engine.PlayerSpeed = def.Engine.PlayerSpeed
	}
	if cfg.Engine.RewardPoints <= 0 {
		cfg.Engine.RewardPoints = def.Engine.RewardPoints
	}

	if cfg.Controls.FPS <= 0 {
		cfg.Controls.FPS = def.Controls.FPS
	}
	if cfg.Controls.HoldWindowMS <= 0 {
		cfg.Controls.HoldWindowMS = def.Controls.HoldWindowMS
	}

	if cfg.Generator.Backend == "" {
		cfg.Generator.Backend = def.Generator.Backend
	}
	if cfg.Generator.Gemini.TimeoutSeconds <= 0 {
		cfg.Generator.Gemini.TimeoutSeconds = def.Generator.Gemini.TimeoutSeconds
	}
	if cfg.Generator.Gemini.MaxRetries < 0 {
		cfg.Generator.Gemini.MaxRetries = 0
	}
	if _, err := ParseDifficulty(string(cfg.Generator.Procedural.Difficulty)); err != nil {
		cfg.Generator.Procedural.Difficulty = DifficultyNormal
	}

	if cfg.Tokens.Initial < 0 {
		cfg.Tokens.Initial = 0
	}
	if cfg.Tokens.LevelCost < 0 {
		cfg.Tokens.LevelCost = 0
	}

	return cfg
}
