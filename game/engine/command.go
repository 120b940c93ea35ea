package engine

import (
	"fmt"
	"time"
)

// CommandType names a state transition
type CommandType string

const (
	CommandTick         CommandType = "tick"
	CommandExpireBonus  CommandType = "expire_bonus"
	CommandSetDirection CommandType = "set_direction"
	CommandTogglePause  CommandType = "toggle_pause"
	CommandReset        CommandType = "reset"
)

// Command is one input to the reducer
type Command struct {
	Type CommandType `json:"type"`
	DX   int         `json:"dx,omitempty"`
	DY   int         `json:"dy,omitempty"`

	// Time is the timestamp used by tick and expire_bonus
	Time time.Time `json:"time,omitempty"`
}

// String renders the command for logs
func (c Command) String() string {
	if c.Type == CommandSetDirection {
		return fmt.Sprintf("%s(%d,%d)", c.Type, c.DX, c.DY)
	}
	return string(c.Type)
}

// Apply runs cmd against state and returns the next state.
// Unknown command types leave the state unchanged.
func Apply(config *GameConfig, state GameState, cmd Command, rng Random) GameState {
	switch cmd.Type {
	case CommandTick:
		return Tick(config, state, cmd.Time, rng)
	case CommandExpireBonus:
		return ExpireBonus(config, state, cmd.Time)
	case CommandSetDirection:
		return SetDirection(state, cmd.DX, cmd.DY)
	case CommandTogglePause:
		return TogglePause(state)
	case CommandReset:
		return Reset(config, state)
	default:
		return state
	}
}
