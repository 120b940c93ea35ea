// Package session provides in-memory session management for the snake arcade.
//
// Every session owns one driver loop. The loop is started when the session is
// created and stopped when it is deleted, expires or the manager is closed,
// so an idle server holds no goroutines for sessions it has forgotten.
//
// Sessions use 4-character hex IDs generated with crypto/rand and are looked
// up case-insensitively. Get and List return copies of the session records;
// the game state itself is only reachable through the session's loop.
//
// Usage:
//
//	manager := session.NewManager()
//	defer manager.Close()
//
//	sess, err := manager.Create("", engine.DefaultGameConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	state := sess.Loop.Snapshot()
package session
