package engine

import (
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() GameState
	SetState(state GameState) error
	IsGameOver() bool
	IsPaused() bool
	GetScore() int
	GetHighScore() int

	// Transitions
	Tick() GameState
	ExpireBonus() GameState
	SetDirection(dx, dy int) GameState
	TogglePause() GameState
	Reset() GameState
	Apply(cmd Command) GameState

	// Configuration
	GetConfig() *GameConfig
}

// Option customizes a GameEngine
type Option func(*GameEngine)

// WithRandom sets the random source used for spawning
func WithRandom(rng Random) Option {
	return func(e *GameEngine) {
		e.rng = rng
	}
}

// WithClock sets the clock used to stamp ticks and expire bonus food
func WithClock(now func() time.Time) Option {
	return func(e *GameEngine) {
		e.now = now
	}
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  GameState
	config *GameConfig
	rng    Random
	now    func() time.Time
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.rng == nil {
		engine.rng = NewRandom(0)
	}

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the classic rules
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	engine, err := NewEngine(DefaultGameConfig(), opts...)
	if err != nil {
		// The built-in rules always validate
		panic(err)
	}
	return engine
}

// GetState returns a snapshot of the current game state
func (e *GameEngine) GetState() GameState {
	return e.state.Clone()
}

// SetState replaces the game state (used by tests and tools to force a position)
func (e *GameEngine) SetState(state GameState) error {
	if len(state.Snake) == 0 {
		return fmt.Errorf("state must have at least one snake segment")
	}
	if state.GridSize == 0 {
		state.GridSize = e.config.GridSize
	}
	if state.GridSize != e.config.GridSize {
		return fmt.Errorf("state grid size %d does not match config grid size %d", state.GridSize, e.config.GridSize)
	}
	e.state = state.Clone()
	return nil
}

// IsGameOver returns whether the run has ended
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// IsPaused returns whether the game is paused
func (e *GameEngine) IsPaused() bool {
	return e.state.IsPaused
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// GetHighScore returns the best score of this session
func (e *GameEngine) GetHighScore() int {
	return e.state.HighScore
}

// Tick advances the snake one cell
func (e *GameEngine) Tick() GameState {
	return e.Apply(Command{Type: CommandTick})
}

// ExpireBonus clears stale bonus food
func (e *GameEngine) ExpireBonus() GameState {
	return e.Apply(Command{Type: CommandExpireBonus})
}

// SetDirection queues a direction for the next tick
func (e *GameEngine) SetDirection(dx, dy int) GameState {
	return e.Apply(Command{Type: CommandSetDirection, DX: dx, DY: dy})
}

// TogglePause pauses or resumes the game
func (e *GameEngine) TogglePause() GameState {
	return e.Apply(Command{Type: CommandTogglePause})
}

// Reset starts a new run, keeping the high score
func (e *GameEngine) Reset() GameState {
	return e.Apply(Command{Type: CommandReset})
}

// Apply runs a command and returns a snapshot of the resulting state.
// Commands without a timestamp are stamped with the engine clock.
func (e *GameEngine) Apply(cmd Command) GameState {
	if cmd.Time.IsZero() {
		cmd.Time = e.now()
	}
	e.state = Apply(e.config, e.state, cmd, e.rng)
	return e.state.Clone()
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}
