// Package driver runs a game engine on its own goroutine.
//
// A Loop owns exactly one engine. Player input arrives through Send or Do
// and the loop's ticker contributes a tick followed by an expire_bonus every
// game period. Everything is applied strictly in arrival order, so no two
// commands ever touch the same state at once.
//
// Readers never see the engine directly. Snapshot returns a copy of the last
// published state and Subscribe delivers a copy every time the state changes.
//
// Usage:
//
//	loop := driver.New(eng, driver.WithName(sessionID))
//	go loop.Run(ctx)
//
//	states, unsubscribe := loop.Subscribe()
//	defer unsubscribe()
//
//	_ = loop.Send(engine.Command{Type: engine.CommandSetDirection, DX: 0, DY: -1})
package driver
