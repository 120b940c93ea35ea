package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/snake-arcade/game/engine"
	"github.com/wricardo/snake-arcade/game/input"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	now      func() time.Time
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		now:      time.Now,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "classic"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	state := sess.Loop.Snapshot()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      &state,
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			return nil, s.configLoadError(configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	log.Info().Str("session", sess.ID).Str("config", configID).Msg("session created")
	return s.sessionInfo(sess, configID), nil
}

// configLoadError lists the available configs when the requested one does not exist
func (s *gameServiceImpl) configLoadError(configName string, err error) error {
	availableConfigs, listErr := s.configs.ListConfigs()
	if listErr == nil && len(availableConfigs) > 0 {
		configIDs := make([]string, 0, len(availableConfigs))
		for _, cfg := range availableConfigs {
			configIDs = append(configIDs, cfg.ConfigID)
		}
		return fmt.Errorf("config '%s' (available: %v): %w", configName, configIDs, err)
	}
	return fmt.Errorf("config '%s': %w", configName, err)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}
	return result, nil
}

// DeleteSession stops the session's loop and removes it
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	log.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// SetDirection queues a direction change. Only unit vectors along one axis are accepted.
func (s *gameServiceImpl) SetDirection(ctx context.Context, sessionID string, dx, dy int) (*CommandResult, error) {
	dir := engine.Direction{X: dx, Y: dy}
	if !dir.IsCardinal() {
		return nil, fmt.Errorf("(%d,%d): %w", dx, dy, ErrInvalidDirection)
	}

	result, err := s.apply(ctx, sessionID, engine.Command{Type: engine.CommandSetDirection, DX: dx, DY: dy})
	if err != nil {
		return nil, err
	}

	result.Accepted = result.GameState.PendingDirection == dir
	if result.Accepted {
		result.Message = fmt.Sprintf("Heading %s on the next tick", dir)
	} else {
		result.Message = fmt.Sprintf("Cannot reverse into %s while moving %s", dir, result.GameState.Direction)
	}
	return result, nil
}

// TogglePause pauses or resumes the session
func (s *gameServiceImpl) TogglePause(ctx context.Context, sessionID string) (*CommandResult, error) {
	result, err := s.apply(ctx, sessionID, engine.Command{Type: engine.CommandTogglePause})
	if err != nil {
		return nil, err
	}

	switch {
	case result.GameState.GameOver:
		result.Message = "Game is over; reset to play again"
	case result.GameState.IsPaused:
		result.Accepted = true
		result.Message = "Game paused"
	default:
		result.Accepted = true
		result.Message = "Game resumed"
	}
	return result, nil
}

// Reset starts a new run in the session, keeping its high score
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*CommandResult, error) {
	result, err := s.apply(ctx, sessionID, engine.Command{Type: engine.CommandReset})
	if err != nil {
		return nil, err
	}
	result.Accepted = true
	result.Message = fmt.Sprintf("New run started. High score: %d", result.GameState.HighScore)
	return result, nil
}

// PressKey maps a raw key through the input adapter and applies the result
func (s *gameServiceImpl) PressKey(ctx context.Context, sessionID, key string) (*CommandResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Loop.Snapshot()
	cmd, ok := input.MapKey(key, state)
	if !ok {
		return &CommandResult{
			Accepted:  false,
			Command:   "none",
			GameState: &state,
			Message:   fmt.Sprintf("Key %q ignored", key),
		}, nil
	}

	switch cmd.Type {
	case engine.CommandSetDirection:
		return s.SetDirection(ctx, sessionID, cmd.DX, cmd.DY)
	case engine.CommandTogglePause:
		return s.TogglePause(ctx, sessionID)
	default:
		return s.Reset(ctx, sessionID)
	}
}

// GetGameState returns the latest snapshot of a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	state := sess.Loop.Snapshot()
	return &state, nil
}

// Subscribe calls fn for every state change in the session until the returned
// function is called or the session is deleted. fn runs on its own goroutine.
func (s *gameServiceImpl) Subscribe(ctx context.Context, sessionID string, fn func(StateUpdate)) (func(), error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	states, unsubscribe := sess.Loop.Subscribe()
	prev := sess.Loop.Snapshot()

	go func() {
		for state := range states {
			fn(StateUpdate{
				SessionID: sess.ID,
				GameState: state,
				Events:    DiffEvents(prev, state, s.now()),
			})
			prev = state
		}
	}()

	return unsubscribe, nil
}

// ListConfigs returns available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
		}
		return nil, err
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// apply sends cmd to the session loop and reports what changed
func (s *gameServiceImpl) apply(ctx context.Context, sessionID string, cmd engine.Command) (*CommandResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	prev := sess.Loop.Snapshot()
	state, err := sess.Loop.Do(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("session %s %s: %w", sessionID, cmd, err)
	}

	return &CommandResult{
		Command:   string(cmd.Type),
		GameState: &state,
		Events:    DiffEvents(prev, state, s.now()),
	}, nil
}
