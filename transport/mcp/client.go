package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/snake-arcade/game/engine"
	"github.com/wricardo/snake-arcade/game/input"
	"github.com/wricardo/snake-arcade/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

var directions = map[string]engine.Direction{
	"up":    engine.Up,
	"down":  engine.Down,
	"left":  engine.Left,
	"right": engine.Right,
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Snake Arcade",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Snake Arcade - MCP Interface

This is a thin client that proxies all requests to the REST API server.
Sessions run in real time: the snake keeps moving every tick whether or
not you send commands. Pause the game while you think.

AVAILABLE TOOLS:
- create_session: Start a new game (optional config_id: classic, speedy, wide)
- list_sessions / get_session: Inspect sessions
- game_state: Board, score and status for a session
- set_direction: Turn the snake (up/down/left/right)
- press_key: Send a keyboard key exactly like the browser does
- toggle_pause: Pause or resume
- reset_game: Start a new run
- list_configs: Available rule sets
- game_instructions: Rules and legend`),
	)

	c.registerTools()
}

func sessionSchema(extra map[string]interface{}, required ...string) mcp.ToolInputSchema {
	props := map[string]interface{}{
		"session_id": map[string]interface{}{
			"type":        "string",
			"description": "Session ID",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   append([]string{"session_id"}, required...),
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Rule set to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionSchema(nil),
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, score and status",
		InputSchema: sessionSchema(nil),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_direction",
		Description: "Turn the snake. Reversing straight into the body is ignored.",
		InputSchema: sessionSchema(map[string]interface{}{
			"direction": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"up", "down", "left", "right"},
				"description": "Direction to turn",
			},
		}, "direction"),
	}, c.handleSetDirection)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "press_key",
		Description: "Press a keyboard key (ArrowUp, w, space, r, ...)",
		InputSchema: sessionSchema(map[string]interface{}{
			"key": map[string]interface{}{
				"type":        "string",
				"description": "Key name as a browser reports it",
			},
		}, "key"),
	}, c.handlePressKey)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "toggle_pause",
		Description: "Pause or resume the game",
		InputSchema: sessionSchema(nil),
	}, c.handleTogglePause)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Start a new run, keeping the high score",
		InputSchema: sessionSchema(nil),
	}, c.handleReset)

	// Info
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules, controls and board legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func stringArg(request mcp.CallToolRequest, name string) string {
	args, _ := request.Params.Arguments.(map[string]interface{})
	s, _ := args[name].(string)
	return s
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := stringArg(request, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		score := 0
		if s.GameState != nil {
			score = s.GameState.Score
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Score: %d, Created: %s)\n",
			s.ID, s.ConfigName, score, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID+"/state", nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleSetDirection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	name := strings.ToLower(stringArg(request, "direction"))

	dir, ok := directions[name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid direction %q (use up, down, left or right)", name)), nil
	}

	body := map[string]int{"dx": dir.X, "dy": dir.Y}
	return c.command(ctx, "/api/sessions/"+sessionID+"/direction", body)
}

func (c *Client) handlePressKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	key := stringArg(request, "key")
	if key == "" {
		return mcp.NewToolResultError("key is required"), nil
	}

	return c.command(ctx, "/api/sessions/"+sessionID+"/key", map[string]string{"key": key})
}

func (c *Client) handleTogglePause(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, "/api/sessions/"+stringArg(request, "session_id")+"/pause", nil)
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, "/api/sessions/"+stringArg(request, "session_id")+"/reset", nil)
}

// command posts a player command and formats the outcome
func (c *Client) command(ctx context.Context, path string, body interface{}) (*mcp.CallToolResult, error) {
	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "- %s: %s (%dx%d, %dms/tick, bonus chance %.0f%%)\n",
			cfg.ConfigID, cfg.Description, cfg.GridSize, cfg.GridSize, cfg.GameSpeedMs, cfg.BonusSpawnChance*100)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	b.WriteString(`Snake Arcade - Instructions

OBJECTIVE:
Eat as much food as possible without running into your own body.

RULES:
- The snake moves one cell every tick in its current direction.
- The board wraps around: leaving one edge enters the opposite edge.
- Food (*) is worth 10 points and grows the snake by one segment.
- Eating food may spawn bonus food ($) worth 50 points. It disappears
  after a few seconds and does not make the snake longer.
- Hitting your own body ends the run. Filling the whole board also ends it.
- You cannot reverse straight into yourself; such turns are ignored.
- Up to two turns are queued between ticks, so quick corners work.

BOARD LEGEND:
@ head   o body   * food   $ bonus food   . empty
Coordinates start at (0,0) in the top-left corner; y grows downward.

CONTROLS (press_key):
`)
	for _, line := range input.Help() {
		b.WriteString("- " + line + "\n")
	}
	b.WriteString(`
TIPS:
- Pause with toggle_pause while you plan; the game keeps running otherwise.
- Check game_state often: the snake moves between your calls.
`)

	return mcp.NewToolResultText(b.String()), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	head := engine.Position{}
	if len(state.Snake) > 0 {
		head = state.Head()
	}

	fmt.Fprintf(&b, "Head: (%d,%d) | Heading: %s | Length: %d | Score: %d | High: %d | Ticks: %d\n",
		head.X, head.Y, state.Direction, len(state.Snake), state.Score, state.HighScore, state.Ticks)
	fmt.Fprintf(&b, "Food: (%d,%d)", state.Food.X, state.Food.Y)
	if state.BonusFood != nil {
		fmt.Fprintf(&b, " | Bonus: (%d,%d)", state.BonusFood.Position.X, state.BonusFood.Position.Y)
	}
	b.WriteString("\n\n")

	for _, row := range engine.RenderGrid(*state) {
		b.WriteString(row)
		b.WriteString("\n")
	}

	switch {
	case state.GameOver:
		b.WriteString("\nGAME OVER - reset_game or press_key r to play again")
	case state.IsPaused:
		b.WriteString("\nPAUSED")
	}

	return b.String()
}

func formatCommandResult(result *service.CommandResult) string {
	var b strings.Builder

	status := "accepted"
	if !result.Accepted {
		status = "ignored"
	}
	fmt.Fprintf(&b, "%s: %s", result.Command, status)
	if result.Message != "" {
		fmt.Fprintf(&b, " (%s)", result.Message)
	}
	b.WriteString("\n")

	for _, e := range result.Events {
		fmt.Fprintf(&b, "* %s\n", e.Message)
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}
