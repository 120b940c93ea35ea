package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/snake-arcade/game/driver"
	"github.com/wricardo/snake-arcade/game/engine"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidDirection = errors.New("direction must be a unit vector along one axis")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	SetDirection(ctx context.Context, sessionID string, dx, dy int) (*CommandResult, error)
	TogglePause(ctx context.Context, sessionID string) (*CommandResult, error)
	Reset(ctx context.Context, sessionID string) (*CommandResult, error)
	PressKey(ctx context.Context, sessionID, key string) (*CommandResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	Subscribe(ctx context.Context, sessionID string, fn func(StateUpdate)) (func(), error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
}

// Session represents an active game session. Its loop owns the game state.
type Session struct {
	ID             string
	Loop           *driver.Loop
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time

	// Stop cancels the loop; it is set by the session manager
	Stop func()
}
