// Package websocket streams live snake sessions to browsers.
//
// A central Hub owns every connection. Clients join a session with
// /ws?session=<id>; the first client makes the hub subscribe to that
// session's state stream, and the last one leaving drops the subscription.
// Each connection runs a read pump and a write pump goroutine.
//
// Message Protocol:
//
// Messages are JSON-encoded:
//   - Incoming: {"key": "ArrowUp"} (any key understood by the input package)
//   - Outgoing: {"session_id": "ab12", "event": "state_update", "game_state": {...}, "data": [events]}
//
// A client that cannot keep up with its send buffer is disconnected.
package websocket
