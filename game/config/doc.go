// Package config provides rule-set management for the snake arcade.
//
// The config package handles:
//   - Loading rule sets from JSON files
//   - Validation through the engine's rule checks
//   - Built-in rule sets used when no file overrides them
//   - Discovery and listing for the API and the CLI
//
// Configuration Format:
//
// Rule sets are stored as JSON files in the configs directory. Each one sets
// the board size, tick period, bonus food timing and chance, point values,
// the starting snake, direction and food, and the placement retry budget.
//
// Available Configurations:
//   - classic: 20x20 board ticking every 300ms (the default)
//   - speedy: classic board at double speed with more bonus food
//   - wide: 40x40 board with a longer starting snake
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rules, err := manager.LoadConfig("speedy")
//	configs, err := manager.ListConfigs()
package config
