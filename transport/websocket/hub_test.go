package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/snake-arcade/game/engine"
	"github.com/wricardo/snake-arcade/game/service"
)

// mockSource implements Source for testing
type mockSource struct {
	mu           sync.Mutex
	state        engine.GameState
	subscribers  map[string]func(service.StateUpdate)
	unsubscribed []string
	keys         []string
}

func newMockSource() *mockSource {
	return &mockSource{
		state:       engine.InitGameStateFromConfig(nil),
		subscribers: make(map[string]func(service.StateUpdate)),
	}
}

func (m *mockSource) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.state.Clone()
	return &state, nil
}

func (m *mockSource) Subscribe(ctx context.Context, sessionID string, fn func(service.StateUpdate)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[sessionID] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, sessionID)
		m.unsubscribed = append(m.unsubscribed, sessionID)
	}, nil
}

func (m *mockSource) PressKey(ctx context.Context, sessionID, key string) (*service.CommandResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return &service.CommandResult{Accepted: true, Command: "set_direction"}, nil
}

func (m *mockSource) subscriber(sessionID string) func(service.StateUpdate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribers[sessionID]
}

func (m *mockSource) pressedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keys...)
}

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		id:        "test-client",
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func readMessage(t *testing.T, ch <-chan []byte) Message {
	t.Helper()
	select {
	case data := <-ch:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		return message
	case <-time.After(time.Second):
		t.Fatal("No message received within timeout")
	}
	return Message{}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	if hub.sessions == nil || hub.watchers == nil {
		t.Error("Hub maps are nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels are nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if hub.ClientCount("TEST-SESSION") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("test-session"))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Expected client send channel to be closed")
	}

	// Unregistering twice is a no-op
	hub.unregisterClient(client)
}

func TestHubWatchesSessionWhileClientsConnected(t *testing.T) {
	source := newMockSource()
	hub := NewHub(source)
	sessionID := "watched"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)

	hub.registerClient(client1)

	// New clients get the current state immediately
	initial := readMessage(t, client1.send)
	if initial.Event != EventStateUpdate || initial.GameState == nil {
		t.Fatalf("Expected initial state update, got %+v", initial)
	}
	if source.subscriber(sessionID) == nil {
		t.Fatal("Expected hub to subscribe to the session")
	}

	hub.registerClient(client2)
	readMessage(t, client2.send)

	hub.unregisterClient(client1)
	if len(source.unsubscribed) != 0 {
		t.Error("Hub should keep watching while a client remains")
	}

	hub.unregisterClient(client2)
	if len(source.unsubscribed) != 1 || source.unsubscribed[0] != sessionID {
		t.Errorf("Expected hub to unsubscribe once, got %v", source.unsubscribed)
	}
}

func TestHubRelaysStateUpdates(t *testing.T) {
	source := newMockSource()
	hub := NewHub(source)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := newTestClient(hub, "relay")
	hub.register <- client
	readMessage(t, client.send)

	waitFor(t, func() bool { return source.subscriber("relay") != nil })

	state := engine.InitGameStateFromConfig(nil)
	state.Score = 60
	source.subscriber("relay")(service.StateUpdate{
		SessionID: "relay",
		GameState: state,
		Events:    []service.GameEvent{{Type: service.EventBonusEaten}},
	})

	message := readMessage(t, client.send)
	if message.GameState == nil || message.GameState.Score != 60 {
		t.Errorf("Unexpected state: %+v", message.GameState)
	}
	events, ok := message.Data.([]interface{})
	if !ok || len(events) != 1 {
		t.Errorf("Expected one event in data, got %v", message.Data)
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	sessionID := "broadcast-test"
	client := newTestClient(hub, sessionID)
	other := newTestClient(hub, "other-session")
	hub.register <- client
	hub.register <- other

	gameState := &engine.GameState{
		GridSize: 20,
		Snake:    []engine.Position{{X: 5, Y: 3}},
		Score:    100,
	}
	hub.BroadcastToSession("Broadcast-Test", gameState)

	message := readMessage(t, client.send)
	if message.SessionID != sessionID {
		t.Errorf("Expected sessionID %s, got %s", sessionID, message.SessionID)
	}
	if message.Event != EventStateUpdate {
		t.Errorf("Expected event '%s', got %s", EventStateUpdate, message.Event)
	}
	if message.GameState.Snake[0] != (engine.Position{X: 5, Y: 3}) || message.GameState.Score != 100 {
		t.Error("GameState not correctly transmitted")
	}

	select {
	case <-other.send:
		t.Error("Clients of other sessions should not receive the update")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub(nil)

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" || message.Event != "custom-event" || message.Data != "test-data" {
			t.Errorf("Unexpected message: %+v", message)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message received within timeout")
	}
}

func TestHubStopsOnContextCancel(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())

	finished := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(finished)
	}()

	client := newTestClient(hub, "stop")
	hub.register <- client
	cancel()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	if _, ok := <-client.send; ok {
		t.Error("Expected client channels to be closed on shutdown")
	}

	// Broadcasting after shutdown must not block
	hub.BroadcastEvent("stop", "late", nil)
}

func TestWebSocketRoundTrip(t *testing.T) {
	source := newMockSource()
	hub := NewHub(source)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// Initial snapshot
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.SessionID != "ws-test" || message.GameState == nil {
		t.Errorf("Unexpected initial message: %+v", message)
	}
	if hub.ClientCount("ws-test") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("ws-test"))
	}

	// Keys are forwarded to the source
	if err := conn.WriteJSON(KeyMessage{Key: "ArrowUp"}); err != nil {
		t.Fatalf("Failed to send key: %v", err)
	}
	waitFor(t, func() bool {
		keys := source.pressedKeys()
		return len(keys) == 1 && keys[0] == "ArrowUp"
	})

	conn.Close()
	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 0 })
}
