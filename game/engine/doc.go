// Package engine provides the core game logic for the snake arcade game.
//
// The engine package implements the game mechanics including:
//   - Toroidal grid movement and self-collision detection
//   - Food and bonus food spawning with bounded random placement
//   - Scoring and the per-session high score
//   - Pause and reset lifecycle
//   - Game configuration loading and validation
//
// Core Types:
//
// GameState is a value describing one moment of a game. Every transition
// (Tick, ExpireBonus, SetDirection, TogglePause, Reset) is a function from
// one GameState to the next and never mutates its input. Apply dispatches a
// Command to the matching transition, which makes the engine a plain reducer.
//
// GameEngine wraps the reducer with a configuration, a random source and a
// clock. It is not safe for concurrent use; the driver package owns one
// engine per session and feeds it commands from a single goroutine.
//
// Usage:
//
//	eng, err := engine.NewEngine(engine.DefaultGameConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng.SetDirection(0, -1)
//	state := eng.Tick()
//
// Game Rules:
//
// The snake advances one cell per tick and wraps around every edge. Eating
// food scores 10 points and grows the snake by one segment. A bonus worth 50
// points may appear after food is eaten and disappears after five seconds.
// Running into its own body ends the run; reset starts a new run while
// keeping the high score.
package engine
