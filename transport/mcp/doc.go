// Package mcp exposes snake sessions to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST request
// against a running server, so agents and browsers can watch and steer
// the same session.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board rendered as text with score and status
//   - set_direction, press_key, toggle_pause, reset_game
//   - list_configs, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
