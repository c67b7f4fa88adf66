// Package websocket provides the WebSocket transport for Connect Four.
//
// The package uses a hub-and-spoke model where a central Hub owns every
// connection. Each client is served by a read pump and a write pump; only the
// hub goroutine touches the client sets.
//
// Message Protocol:
//
// Clients connect with the game they watch (?game=<key>). Frames sent by a
// client are service events:
//
//	{"kind": "join", "player": "bob"}
//	{"kind": "move", "player": "alice", "column": 4}
//
// A missing key defaults to the watched game. The sender receives a "reply"
// (or an "error") message; every watcher of the game then receives a
// "state_update" carrying the new snapshot. Rejected moves change nothing and
// are not broadcast.
//
// A finished game's final snapshot is its last message: the hub then drops
// its watchers and their sockets get a close frame. CloseGame does the same
// for abandoned games after a "game_closed" message.
//
// Usage:
//
//	hub := websocket.NewHub(websocket.WithEventHandler(gameService.Dispatch))
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("game"))
//	})
package websocket
