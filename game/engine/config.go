package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// GameConfig represents the game rules loaded from JSON
type GameConfig struct {
	Name                 string     `json:"name"`
	Description          string     `json:"description"`
	GridSize             int        `json:"grid_size"`
	GameSpeedMs          int        `json:"game_speed_ms"`
	BonusDurationMs      int        `json:"bonus_duration_ms"`
	BonusSpawnChance     float64    `json:"bonus_spawn_chance"`
	FoodPoints           int        `json:"food_points"`
	BonusPoints          int        `json:"bonus_points"`
	StartSnake           []Position `json:"start_snake"`
	StartDirection       Direction  `json:"start_direction"`
	StartFood            Position   `json:"start_food"`
	MaxPlacementAttempts int        `json:"max_placement_attempts"`
}

// GameSpeed returns the tick period
func (c *GameConfig) GameSpeed() time.Duration {
	return time.Duration(c.GameSpeedMs) * time.Millisecond
}

// BonusDuration returns how long a bonus food stays on the board
func (c *GameConfig) BonusDuration() time.Duration {
	return time.Duration(c.BonusDurationMs) * time.Millisecond
}

// DefaultGameConfig returns the classic rules: a 20x20 board ticking every 300ms
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:                 "classic",
		Description:          "Classic 20x20 wrap-around board",
		GridSize:             DefaultGridSize,
		GameSpeedMs:          DefaultGameSpeedMs,
		BonusDurationMs:      DefaultBonusDurationMs,
		BonusSpawnChance:     DefaultBonusSpawnChance,
		FoodPoints:           DefaultFoodPoints,
		BonusPoints:          DefaultBonusPoints,
		StartSnake:           []Position{{X: 10, Y: 10}},
		StartDirection:       Right,
		StartFood:            Position{X: 15, Y: 15},
		MaxPlacementAttempts: DefaultMaxPlacementAttempts,
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid and timing
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}
	if config.GameSpeedMs < MinGameSpeedMs || config.GameSpeedMs > MaxGameSpeedMs {
		return fmt.Errorf("config validation: game_speed_ms must be between %d and %d, got %d", MinGameSpeedMs, MaxGameSpeedMs, config.GameSpeedMs)
	}
	if config.BonusDurationMs <= 0 {
		return fmt.Errorf("config validation: bonus_duration_ms must be positive, got %d", config.BonusDurationMs)
	}
	if config.BonusSpawnChance < 0 || config.BonusSpawnChance > 1 {
		return fmt.Errorf("config validation: bonus_spawn_chance must be between 0 and 1, got %g", config.BonusSpawnChance)
	}
	if config.FoodPoints < 0 || config.BonusPoints < 0 {
		return fmt.Errorf("config validation: food_points and bonus_points must not be negative")
	}
	if config.MaxPlacementAttempts <= 0 {
		return fmt.Errorf("config validation: max_placement_attempts must be positive, got %d", config.MaxPlacementAttempts)
	}

	// Validate start layout
	if len(config.StartSnake) == 0 {
		return fmt.Errorf("config validation: start_snake must have at least one segment")
	}
	if !config.StartDirection.IsCardinal() {
		return fmt.Errorf("config validation: start_direction must be a unit cardinal vector, got (%d,%d)",
			config.StartDirection.X, config.StartDirection.Y)
	}
	seen := make(map[Position]bool, len(config.StartSnake))
	for i, p := range config.StartSnake {
		if !inGrid(p, config.GridSize) {
			return fmt.Errorf("config validation: start_snake[%d] (%d,%d) is outside the grid", i, p.X, p.Y)
		}
		if seen[p] {
			return fmt.Errorf("config validation: start_snake[%d] (%d,%d) overlaps another segment", i, p.X, p.Y)
		}
		seen[p] = true
	}
	if !inGrid(config.StartFood, config.GridSize) {
		return fmt.Errorf("config validation: start_food (%d,%d) is outside the grid", config.StartFood.X, config.StartFood.Y)
	}
	if seen[config.StartFood] {
		return fmt.Errorf("config validation: start_food (%d,%d) lies on the snake", config.StartFood.X, config.StartFood.Y)
	}

	return nil
}

// ParseGameConfig decodes and validates a JSON configuration
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseGameConfig(data)
}

// InitGameStateFromConfig creates a new game state using the provided configuration
func InitGameStateFromConfig(config *GameConfig) GameState {
	if config == nil {
		config = DefaultGameConfig()
	}

	snake := make([]Position, len(config.StartSnake))
	copy(snake, config.StartSnake)

	return GameState{
		GridSize:         config.GridSize,
		Snake:            snake,
		Direction:        config.StartDirection,
		PendingDirection: config.StartDirection,
		Food:             config.StartFood,
	}
}

func inGrid(p Position, gridSize int) bool {
	return p.X >= 0 && p.X < gridSize && p.Y >= 0 && p.Y < gridSize
}
