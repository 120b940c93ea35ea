package service

import (
	"fmt"
	"time"

	"github.com/wricardo/snake-arcade/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// CommandResult contains the outcome of a player command
type CommandResult struct {
	Accepted  bool              `json:"accepted"`
	Command   string            `json:"command"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// Event types reported by DiffEvents
const (
	EventFoodEaten    = "food_eaten"
	EventBonusSpawned = "bonus_spawned"
	EventBonusEaten   = "bonus_eaten"
	EventBonusExpired = "bonus_expired"
	EventGameOver     = "game_over"
	EventHighScore    = "high_score"
	EventPaused       = "paused"
	EventResumed      = "resumed"
	EventReset        = "reset"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// StateUpdate is delivered to subscribers whenever a session's state changes
type StateUpdate struct {
	SessionID string           `json:"session_id"`
	GameState engine.GameState `json:"game_state"`
	Events    []GameEvent      `json:"events,omitempty"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename         string  `json:"filename"`
	ConfigID         string  `json:"config_id"` // The identifier to use for session creation
	Name             string  `json:"name"`      // Display name
	Description      string  `json:"description"`
	GridSize         int     `json:"grid_size"`
	GameSpeedMs      int     `json:"game_speed_ms"`
	BonusSpawnChance float64 `json:"bonus_spawn_chance"`
}

// DiffEvents describes what happened between two consecutive snapshots of
// the same session. Snapshots a subscriber never saw are not reconstructed.
func DiffEvents(prev, next engine.GameState, now time.Time) []GameEvent {
	var events []GameEvent
	add := func(typ, msg string, pos engine.Position) {
		events = append(events, GameEvent{Type: typ, Message: msg, Timestamp: now, Position: pos})
	}

	if next.Ticks < prev.Ticks || (prev.GameOver && !next.GameOver) {
		add(EventReset, "New run started", next.Head())
		return events
	}

	bonusEaten := false
	if len(next.Snake) > len(prev.Snake) && len(next.Snake) > 0 {
		head := next.Head()
		switch {
		case prev.BonusFood != nil && head == prev.BonusFood.Position:
			bonusEaten = true
			add(EventBonusEaten, fmt.Sprintf("Bonus food eaten! Score: %d", next.Score), head)
		case head == prev.Food:
			add(EventFoodEaten, fmt.Sprintf("Food eaten! Score: %d", next.Score), head)
		}
	}

	switch {
	case next.BonusFood != nil && (prev.BonusFood == nil || !next.BonusFood.SpawnTime.Equal(prev.BonusFood.SpawnTime)):
		add(EventBonusSpawned, "Bonus food appeared", next.BonusFood.Position)
	case prev.BonusFood != nil && next.BonusFood == nil && !bonusEaten:
		add(EventBonusExpired, "Bonus food disappeared", prev.BonusFood.Position)
	}

	if !prev.IsPaused && next.IsPaused {
		add(EventPaused, "Game paused", engine.Position{})
	}
	if prev.IsPaused && !next.IsPaused {
		add(EventResumed, "Game resumed", engine.Position{})
	}

	if !prev.GameOver && next.GameOver {
		var pos engine.Position
		if len(next.Snake) > 0 {
			pos = next.Head()
		}
		add(EventGameOver, fmt.Sprintf("Game over! Final score: %d", next.Score), pos)
		if next.HighScore > prev.HighScore {
			add(EventHighScore, fmt.Sprintf("New high score: %d", next.HighScore), pos)
		}
	}

	return events
}
