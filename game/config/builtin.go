package config

import (
	"sort"

	"github.com/wricardo/snake-arcade/game/engine"
)

var builtins = map[string]func() *engine.GameConfig{
	"classic": engine.DefaultGameConfig,
	"speedy": func() *engine.GameConfig {
		c := engine.DefaultGameConfig()
		c.Name = "speedy"
		c.Description = "Classic board at double speed with more frequent bonus food"
		c.GameSpeedMs = 150
		c.BonusDurationMs = 3000
		c.BonusSpawnChance = 0.3
		return c
	},
	"wide": func() *engine.GameConfig {
		c := engine.DefaultGameConfig()
		c.Name = "wide"
		c.Description = "Large 40x40 board with a three-segment starting snake"
		c.GridSize = 40
		c.GameSpeedMs = 200
		c.StartSnake = []engine.Position{{X: 20, Y: 20}, {X: 19, Y: 20}, {X: 18, Y: 20}}
		c.StartFood = engine.Position{X: 30, Y: 30}
		return c
	},
}

// Builtin returns a fresh copy of a built-in rule set
func Builtin(name string) (*engine.GameConfig, bool) {
	fn, ok := builtins[name]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// BuiltinNames lists the built-in rule sets in sorted order
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
