// Package api provides the HTTP surface of the snake server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "speedy"}, optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Session details with its current state
//   - DELETE /api/sessions/{id} - Stop and remove a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/direction - Queue a turn ({"dx": 0, "dy": -1})
//   - POST /api/sessions/{id}/pause - Toggle pause
//   - POST /api/sessions/{id}/reset - Start a new run
//   - POST /api/sessions/{id}/key - Press a keyboard key ({"key": "ArrowUp"})
//
// Configuration:
//   - GET /api/configs - List rule sets
//   - GET /api/configs/{name} - One rule set
//   - GET /api/keys - Control reference
//
// Other:
//   - GET /health - Liveness
//   - GET /ws?session={id} - WebSocket stream of state updates
//   - GET / - Embedded browser client
//
// Service errors map to status codes: unknown sessions and configs are 404,
// invalid directions and malformed bodies are 400, anything else is 500.
package api
