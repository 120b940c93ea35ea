// Package service is the layer between the transports (HTTP, WebSocket,
// MCP, terminal) and the snake engine.
//
// GameService owns the session lifecycle and turns player intent into
// engine commands delivered to each session's driver loop. It also turns
// the stream of published states into GameEvents (food eaten, bonus
// spawned, game over, ...) by diffing consecutive states.
//
// Usage:
//
//	sessions := session.NewManager()
//	configs, _ := config.NewManager("configs")
//	svc := service.NewGameService(sessions, configs)
//
//	info, err := svc.CreateSession(ctx, "speedy")
//	if err != nil {
//		return err
//	}
//	result, err := svc.SetDirection(ctx, info.ID, 0, -1)
//
// Sessions are identified by short hex IDs and run independently, each on
// its own goroutine and tick period.
package service
