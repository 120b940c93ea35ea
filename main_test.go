package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/snake-arcade/game/engine"
	"github.com/wricardo/snake-arcade/game/session"
	"github.com/wricardo/snake-arcade/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}
	if sessionCleanupInterval >= sessionMaxAge {
		t.Error("cleanup should run more often than sessions expire")
	}
}

func TestInitializeServices(t *testing.T) {
	t.Run("built-ins only", func(t *testing.T) {
		svc, err := initializeServices("")
		if err != nil {
			t.Fatalf("initializeServices failed: %v", err)
		}
		defer svc.sessions.Close()

		if svc.game == nil || svc.configs == nil {
			t.Fatal("services not wired")
		}
		info, err := svc.game.CreateSession(context.Background(), "speedy")
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if info.ConfigName != "speedy" {
			t.Errorf("ConfigName = %q, want speedy", info.ConfigName)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		if _, err := initializeServices("/non/existent/path"); err == nil {
			t.Error("expected error for missing config directory")
		}
	})
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		level string
		debug bool
		want  zerolog.Level
	}{
		{"info", false, zerolog.InfoLevel},
		{"warn", false, zerolog.WarnLevel},
		{"bogus", false, zerolog.InfoLevel},
		{"", false, zerolog.InfoLevel},
		{"error", true, zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			setupLogging(&buf, tt.level, tt.debug)
			if got := zerolog.GlobalLevel(); got != tt.want {
				t.Errorf("GlobalLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewHandler(t *testing.T) {
	svc, err := initializeServices("")
	if err != nil {
		t.Fatalf("initializeServices failed: %v", err)
	}
	defer svc.sessions.Close()

	handler := newHandler(svc.game, nil, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("/health status = %d, want 200", rr.Code)
	}

	// without an MCP client the endpoint is not mounted
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/mcp", nil))
	if rr.Code == http.StatusOK {
		t.Error("/mcp should not be served without a client")
	}
}

func TestNewHandlerMCPMethod(t *testing.T) {
	svc, err := initializeServices("")
	if err != nil {
		t.Fatalf("initializeServices failed: %v", err)
	}
	defer svc.sessions.Close()

	handler := newHandler(svc.game, nil, mcp.NewClient("http://unused"))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/mcp", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /mcp status = %d, want 405", rr.Code)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"ping"}`
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/mcp", strings.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Errorf("POST /mcp status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"jsonrpc":"2.0"`) {
		t.Errorf("unexpected MCP response: %s", rr.Body.String())
	}
}

func TestSessionCleanupRoutine(t *testing.T) {
	manager := session.NewManager()
	defer manager.Close()

	if _, err := manager.Create("", engine.DefaultGameConfig()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, manager, 5*time.Millisecond, 0)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for manager.Count() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if manager.Count() != 0 {
		t.Error("expired session was not removed")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop on cancel")
	}
}

func TestAPIReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	if !apiReachable(server.URL) {
		t.Error("expected API to be reachable")
	}

	server.Close()
	if apiReachable(server.URL) {
		t.Error("closed server should not be reachable")
	}
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(context.Background(), append([]string{"snake-arcade"}, args...))
	return out.String(), err
}

func TestConfigsList(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"builtin rules", []string{"--builtin-rules", "configs", "list"}},
		{"builtin rules win over a missing directory", []string{"--config-dir", "/non/existent/path", "--builtin-rules", "configs", "list"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runApp(t, tt.args...)
			if err != nil {
				t.Fatalf("configs list failed: %v", err)
			}
			// the header only comes from the list command
			if !strings.HasPrefix(out, "ID") || !strings.Contains(out, "GRID") {
				t.Fatalf("configs list did not run, output:\n%s", out)
			}
			for _, want := range []string{"classic", "speedy", "wide", "built-in"} {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in output:\n%s", want, out)
				}
			}
		})
	}
}

func TestConfigsInitAndValidate(t *testing.T) {
	dir := t.TempDir()

	out, err := runApp(t, "--config-dir", dir, "configs", "init")
	if err != nil {
		t.Fatalf("configs init failed: %v", err)
	}
	if !strings.Contains(out, "wrote") {
		t.Errorf("expected files to be written, got:\n%s", out)
	}
	for _, name := range []string{"classic", "speedy", "wide"} {
		if _, err := os.Stat(filepath.Join(dir, name+".json")); err != nil {
			t.Errorf("missing %s.json: %v", name, err)
		}
	}

	out, err = runApp(t, "--config-dir", dir, "configs", "init")
	if err != nil {
		t.Fatalf("second init failed: %v", err)
	}
	if !strings.Contains(out, "skip") {
		t.Errorf("expected existing files to be skipped, got:\n%s", out)
	}

	out, err = runApp(t, "--config-dir", dir, "configs", "validate")
	if err != nil {
		t.Fatalf("validate failed: %v\n%s", err, out)
	}
	if strings.Count(out, "ok   ") != 3 {
		t.Errorf("expected three valid files, got:\n%s", out)
	}

	bad := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(bad, []byte(`{"name":"broken","grid_size":1}`), 0644); err != nil {
		t.Fatal(err)
	}
	out, err = runApp(t, "--config-dir", dir, "configs", "validate", bad)
	if err == nil {
		t.Error("expected validate to fail for a broken file")
	}
	if !strings.Contains(out, "FAIL") {
		t.Errorf("expected FAIL line, got:\n%s", out)
	}
}

func TestConfigsBuiltinRulesOnly(t *testing.T) {
	out, err := runApp(t, "--builtin-rules", "configs", "validate")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "no rule files to validate") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := runApp(t, "--builtin-rules", "configs", "init"); err == nil {
		t.Error("init should need a config directory")
	}
}

func TestTUIUnknownRules(t *testing.T) {
	_, err := runApp(t, "--builtin-rules", "tui", "--rules", "nope")
	if err == nil {
		t.Fatal("expected error for unknown rule set")
	}
	// the error must come from the tui command loading its rules
	if !strings.Contains(err.Error(), `rules "nope"`) {
		t.Errorf("unexpected error: %v", err)
	}
}
