// Package input maps raw key names from any front end to engine commands.
package input

import (
	"strings"

	"github.com/wricardo/snake-arcade/game/engine"
)

// Key names shared by the browser page, the websocket hub and the terminal
var directionKeys = map[string]engine.Direction{
	"arrowup":    engine.Up,
	"arrowdown":  engine.Down,
	"arrowleft":  engine.Left,
	"arrowright": engine.Right,
	"up":         engine.Up,
	"down":       engine.Down,
	"left":       engine.Left,
	"right":      engine.Right,
	"w":          engine.Up,
	"s":          engine.Down,
	"a":          engine.Left,
	"d":          engine.Right,
}

// MapKey translates a key press into a command for the current state.
// ok is false for keys that have no meaning, and for r/R while a run is
// still going: reset is only honored once the game is over.
func MapKey(key string, current engine.GameState) (engine.Command, bool) {
	if key == " " {
		return engine.Command{Type: engine.CommandTogglePause}, true
	}

	name := strings.ToLower(strings.TrimSpace(key))
	if dir, ok := directionKeys[name]; ok {
		return engine.Command{Type: engine.CommandSetDirection, DX: dir.X, DY: dir.Y}, true
	}

	switch name {
	case "space", "spacebar":
		return engine.Command{Type: engine.CommandTogglePause}, true
	case "r":
		if !current.GameOver {
			return engine.Command{}, false
		}
		return engine.Command{Type: engine.CommandReset}, true
	}

	return engine.Command{}, false
}

// Help lists the controls in display order
func Help() []string {
	return []string{
		"Arrow keys or WASD: steer",
		"Space: pause / resume",
		"R: restart after game over",
	}
}
