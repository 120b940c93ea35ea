package engine

import "time"

const (
	// Defaults for the classic game
	DefaultGridSize             = 20
	DefaultGameSpeedMs          = 300
	DefaultBonusDurationMs      = 5000
	DefaultBonusSpawnChance     = 0.15
	DefaultFoodPoints           = 10
	DefaultBonusPoints          = 50
	DefaultMaxPlacementAttempts = 64

	// Validation constants
	MinGridSize         = 5
	MaxGridSize         = 50
	MinGameSpeedMs      = 50
	MaxGameSpeedMs      = 2000
	WebSocketBufferSize = 256
)

// Position represents x,y coordinates on the grid
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Direction is a unit vector along one of the grid axes
type Direction struct {
	X int `json:"x"`
	Y int `json:"y"`
}

var (
	Up    = Direction{X: 0, Y: -1}
	Down  = Direction{X: 0, Y: 1}
	Left  = Direction{X: -1, Y: 0}
	Right = Direction{X: 1, Y: 0}
)

// IsCardinal reports whether d is one of Up, Down, Left or Right
func (d Direction) IsCardinal() bool {
	return (d.X == 0 && (d.Y == 1 || d.Y == -1)) || (d.Y == 0 && (d.X == 1 || d.X == -1))
}

// Opposes reports whether (dx, dy) points exactly against d
func (d Direction) Opposes(dx, dy int) bool {
	return d.X+dx == 0 && d.Y+dy == 0
}

// String returns the direction name
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "invalid"
	}
}

// BonusFood is a short-lived, high-value food item
type BonusFood struct {
	Position  Position  `json:"position"`
	SpawnTime time.Time `json:"spawn_time"`
}

// GameState represents the complete game state
type GameState struct {
	GridSize         int        `json:"grid_size"`
	Snake            []Position `json:"snake"` // head first
	Direction        Direction  `json:"direction"`
	PendingDirection Direction  `json:"pending_direction"`
	Food             Position   `json:"food"`
	BonusFood        *BonusFood `json:"bonus_food,omitempty"`
	Score            int        `json:"score"`
	HighScore        int        `json:"high_score"`
	GameOver         bool       `json:"game_over"`
	IsPaused         bool       `json:"is_paused"`

	// Ticks counts the ticks that moved the snake or ended the run since the last reset.
	Ticks uint64 `json:"ticks"`
}

// Head returns the first snake segment
func (gs GameState) Head() Position {
	return gs.Snake[0]
}

// Clone returns a deep copy that shares no memory with gs
func (gs GameState) Clone() GameState {
	out := gs
	out.Snake = make([]Position, len(gs.Snake))
	copy(out.Snake, gs.Snake)
	if gs.BonusFood != nil {
		bonus := *gs.BonusFood
		out.BonusFood = &bonus
	}
	return out
}

// Equal reports whether two states describe the same game moment
func (gs GameState) Equal(other GameState) bool {
	if gs.GridSize != other.GridSize ||
		gs.Direction != other.Direction ||
		gs.PendingDirection != other.PendingDirection ||
		gs.Food != other.Food ||
		gs.Score != other.Score ||
		gs.HighScore != other.HighScore ||
		gs.GameOver != other.GameOver ||
		gs.IsPaused != other.IsPaused ||
		gs.Ticks != other.Ticks ||
		len(gs.Snake) != len(other.Snake) {
		return false
	}
	for i := range gs.Snake {
		if gs.Snake[i] != other.Snake[i] {
			return false
		}
	}
	switch {
	case gs.BonusFood == nil && other.BonusFood == nil:
		return true
	case gs.BonusFood == nil || other.BonusFood == nil:
		return false
	default:
		return gs.BonusFood.Position == other.BonusFood.Position &&
			gs.BonusFood.SpawnTime.Equal(other.BonusFood.SpawnTime)
	}
}
