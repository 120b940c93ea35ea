package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/snake-arcade/game/engine"
	"github.com/wricardo/snake-arcade/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// EventStateUpdate is sent whenever a session's state changes
	EventStateUpdate = "state_update"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The page is served from the same binary; tunnels change the origin
		return true
	},
}

// Source is the part of the game service the hub needs
type Source interface {
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	Subscribe(ctx context.Context, sessionID string, fn func(service.StateUpdate)) (func(), error)
	PressKey(ctx context.Context, sessionID, key string) (*service.CommandResult, error)
}

// Message represents a WebSocket message sent to clients
type Message struct {
	SessionID string            `json:"session_id"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
}

// KeyMessage is what clients send to steer the snake
type KeyMessage struct {
	Key string `json:"key"`
}

// Client represents a WebSocket client
type Client struct {
	id        string
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub maintains the set of active clients and broadcasts messages.
// It watches a session on the source while at least one client is connected to it.
type Hub struct {
	source Source

	// Registered clients by session ID, written only by Run
	sessions map[string]map[*Client]bool
	mu       sync.RWMutex

	// Unsubscribe functions for watched sessions
	watchers map[string]func()

	// Outbound messages for clients
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}
}

// NewHub creates a new WebSocket hub. source may be nil, in which case the
// hub only relays what is broadcast to it and ignores client keys.
func NewHub(source Source) *Hub {
	return &Hub{
		source:     source,
		sessions:   make(map[string]map[*Client]bool),
		watchers:   make(map[string]func()),
		broadcast:  make(chan *Message, engine.WebSocketBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop and returns when ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		id:        uuid.NewString(),
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, engine.WebSocketBufferSize),
		sessionID: strings.ToLower(sessionID),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastToSession sends a game state update to all clients in a session
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.enqueue(&Message{
		SessionID: strings.ToLower(sessionID),
		GameState: state,
		Event:     EventStateUpdate,
	})
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.enqueue(&Message{
		SessionID: strings.ToLower(sessionID),
		Event:     event,
		Data:      data,
	})
}

// enqueue hands a message to Run; messages sent after Run returned are dropped
func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// ClientCount returns the number of clients connected to a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[strings.ToLower(sessionID)])
}

// registerClient adds a client to a session and starts watching it
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true
	total := len(h.sessions[client.sessionID])
	h.mu.Unlock()

	log.Info().Str("session", client.sessionID).Str("client", client.id).Int("clients", total).Msg("client registered")

	if h.source == nil {
		return
	}

	// Give the new client the current picture right away
	if state, err := h.source.GetGameState(context.Background(), client.sessionID); err == nil {
		h.sendTo(client, &Message{SessionID: client.sessionID, GameState: state, Event: EventStateUpdate})
	}

	if _, watching := h.watchers[client.sessionID]; watching {
		return
	}
	sessionID := client.sessionID
	unsubscribe, err := h.source.Subscribe(context.Background(), sessionID, func(u service.StateUpdate) {
		state := u.GameState
		message := &Message{SessionID: sessionID, GameState: &state, Event: EventStateUpdate}
		if len(u.Events) > 0 {
			message.Data = u.Events
		}
		h.enqueue(message)
	})
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("cannot watch session")
		return
	}
	h.watchers[sessionID] = unsubscribe
}

// unregisterClient removes a client from a session and stops watching
// the session once its last client is gone
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	clients, ok := h.sessions[client.sessionID]
	if !ok || !clients[client] {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	close(client.send)
	remaining := len(clients)
	if remaining == 0 {
		delete(h.sessions, client.sessionID)
	}
	h.mu.Unlock()

	if remaining == 0 {
		if unsubscribe, watching := h.watchers[client.sessionID]; watching {
			delete(h.watchers, client.sessionID)
			unsubscribe()
		}
	}

	log.Info().Str("session", client.sessionID).Str("client", client.id).Int("clients", remaining).Msg("client unregistered")
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.sessions[message.SessionID]))
	for client := range h.sessions[message.SessionID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.sendTo(client, message)
	}
}

// sendTo queues a message for one client, dropping clients that cannot keep up
func (h *Hub) sendTo(client *Client, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal websocket message")
		return
	}

	select {
	case client.send <- data:
	default:
		h.unregisterClient(client)
	}
}

func (h *Hub) shutdown() {
	close(h.done)

	for sessionID, unsubscribe := range h.watchers {
		delete(h.watchers, sessionID)
		unsubscribe()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sessionID, clients := range h.sessions {
		for client := range clients {
			close(client.send)
		}
		delete(h.sessions, sessionID)
	}
}

// readPump forwards key presses from the connection to the game
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client", c.id).Msg("websocket error")
			}
			break
		}

		var msg KeyMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Key == "" {
			continue
		}
		c.handleKey(msg.Key)
	}
}

func (c *Client) handleKey(key string) {
	if c.hub.source == nil {
		return
	}

	result, err := c.hub.source.PressKey(context.Background(), c.sessionID, key)
	if err != nil {
		log.Warn().Err(err).Str("session", c.sessionID).Str("key", key).Msg("key rejected")
		return
	}
	log.Debug().Str("session", c.sessionID).Str("key", key).Str("cmd", result.Command).Bool("accepted", result.Accepted).Msg("key")
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
