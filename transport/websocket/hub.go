package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/connectfour/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Time allowed for an inbound event to be handled.
	handleWait = 5 * time.Second
)

// Outbound event names
const (
	EventStateUpdate = "state_update"
	EventReply       = "reply"
	EventError       = "error"
	EventGameClosed  = "game_closed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message represents an outbound WebSocket message
type Message struct {
	Game     string            `json:"game"`
	Event    string            `json:"event"`
	Snapshot *service.Snapshot `json:"snapshot,omitempty"`
	Reply    *service.Reply    `json:"reply,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// EventHandler handles an event sent by a client
type EventHandler func(ctx context.Context, event service.Event) (*service.Reply, error)

// Client represents a WebSocket client
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	game string
}

// outbound is a message addressed to a whole game or to a single client
type outbound struct {
	game   string
	client *Client
	data   []byte
	// close unregisters every client of the game once data is delivered
	close bool
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by normalized game key
	games map[string]map[*Client]bool

	// Outbound messages
	broadcast chan outbound

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Queries run on the hub goroutine
	queries chan func()

	done    chan struct{}
	handler EventHandler
	logger  *zap.Logger
}

// Option configures a Hub
type Option func(*Hub)

// WithEventHandler routes client frames to h
func WithEventHandler(h EventHandler) Option {
	return func(hub *Hub) {
		hub.handler = h
	}
}

// WithLogger sets the hub logger
func WithLogger(logger *zap.Logger) Option {
	return func(hub *Hub) {
		if logger != nil {
			hub.logger = logger.Named("websocket")
		}
	}
}

// NewHub creates a new WebSocket hub
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		games:      make(map[string]map[*Client]bool),
		broadcast:  make(chan outbound, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		queries:    make(chan func()),
		done:       make(chan struct{}),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run starts the hub's event loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for _, clients := range h.games {
			for client := range clients {
				close(client.send)
			}
		}
		h.games = make(map[string]map[*Client]bool)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)

		case query := <-h.queries:
			query()
		}
	}
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, game string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		game: normalize(game),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// BroadcastSnapshot sends a game snapshot to all clients watching the game.
// A finished game's watchers are disconnected after the final snapshot.
func (h *Hub) BroadcastSnapshot(snap *service.Snapshot) {
	if snap == nil {
		return
	}
	h.publish(normalize(snap.Key), nil, &Message{
		Game:     snap.Key,
		Event:    EventStateUpdate,
		Snapshot: snap,
	}, snap.Status == service.StatusFinished)
}

// CloseGame tells the clients watching a game that it is gone and
// disconnects them
func (h *Hub) CloseGame(game string) {
	h.publish(normalize(game), nil, &Message{
		Game:  game,
		Event: EventGameClosed,
	}, true)
}

// ClientCount returns the number of clients watching a game
func (h *Hub) ClientCount(game string) int {
	reply := make(chan int, 1)
	select {
	case h.queries <- func() { reply <- len(h.games[normalize(game)]) }:
		return <-reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) publish(game string, client *Client, msg *Message, closeGame bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- outbound{game: game, client: client, data: data, close: closeGame}:
	case <-h.done:
	}
}

// registerClient adds a client to a game
func (h *Hub) registerClient(client *Client) {
	if h.games[client.game] == nil {
		h.games[client.game] = make(map[*Client]bool)
	}
	h.games[client.game][client] = true

	h.logger.Debug("client registered",
		zap.String("game", client.game),
		zap.Int("clients", len(h.games[client.game])))
}

// unregisterClient removes a client from a game
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.games[client.game]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			// Clean up empty games
			if len(clients) == 0 {
				delete(h.games, client.game)
			}

			h.logger.Debug("client unregistered",
				zap.String("game", client.game),
				zap.Int("clients", len(clients)))
		}
	}
}

// deliver sends a message to one client or to every client of a game
func (h *Hub) deliver(msg outbound) {
	clients, ok := h.games[msg.game]
	if !ok {
		return
	}

	if msg.client != nil {
		if clients[msg.client] {
			h.send(msg.client, msg.data)
		}
		return
	}

	for client := range clients {
		h.send(client, msg.data)
	}

	if msg.close {
		h.closeGame(msg.game)
	}
}

// closeGame unregisters every client of a game. Their write pumps flush what
// is queued and then send a close frame.
func (h *Hub) closeGame(game string) {
	clients := h.games[game]
	for client := range clients {
		close(client.send)
	}
	delete(h.games, game)

	h.logger.Debug("game closed",
		zap.String("game", game),
		zap.Int("clients", len(clients)))
}

func (h *Hub) send(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		// Client's send channel is full, drop it
		h.unregisterClient(client)
	}
}

// handle dispatches a client frame and answers it
func (c *Client) handle(data []byte) {
	h := c.hub
	if h.handler == nil {
		return
	}

	var event service.Event
	if err := json.Unmarshal(data, &event); err != nil {
		h.publish(c.game, c, &Message{Game: c.game, Event: EventError, Error: "invalid event: " + err.Error()}, false)
		return
	}
	if event.Key == "" && event.Kind != service.EventNewGame {
		event.Key = c.game
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleWait)
	defer cancel()

	reply, err := h.handler(ctx, event)
	if err != nil {
		h.publish(c.game, c, &Message{Game: c.game, Event: EventError, Error: err.Error()}, false)
		return
	}

	h.publish(c.game, c, &Message{Game: c.game, Event: EventReply, Reply: reply}, false)
	if reply.Move == nil || !reply.Move.Outcome.IsRejection() {
		h.BroadcastSnapshot(reply.Snapshot)
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket error", zap.Error(err))
			}
			break
		}
		c.handle(data)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func normalize(game string) string {
	return strings.ToLower(strings.TrimSpace(game))
}
