package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/frfrance/pong-arena/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Client is one WebSocket connection. The handle is the transport identity
// the game core addresses replies and room membership by.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	handle string
	userID string
	login  string
}

// Hub maintains the set of active clients and their room memberships, and
// implements service.Emitter. Delivery methods are called synchronously
// from service goroutines (the countdown among them), so the maps are
// mutex-guarded rather than funneled through an event loop.
type Hub struct {
	mu sync.RWMutex

	// Clients by transport handle.
	byHandle map[string]*Client

	// Room membership: room id (or watch id) -> handle -> client.
	rooms map[string]map[string]*Client

	svc service.GameService
}

// NewHub creates an empty hub. Bind must be called before ServeWS.
func NewHub() *Hub {
	return &Hub{
		byHandle: make(map[string]*Client),
		rooms:    make(map[string]map[string]*Client),
	}
}

// Bind attaches the game service after construction; the hub and the
// service reference each other, so one side has to be wired late.
func (h *Hub) Bind(svc service.GameService) {
	h.svc = svc
}

// ServeWS upgrades an HTTP request to a WebSocket connection. The caller
// identifies itself with the user and login query parameters; a fresh
// transport handle is minted per connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	login := r.URL.Query().Get("login")
	if userID == "" || login == "" {
		http.Error(w, "user and login query parameters are required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		handle: uuid.NewString(),
		userID: userID,
		login:  login,
	}

	h.register(client)
	h.svc.Connect(r.Context(), userID, login, client.handle)

	go client.writePump()
	go client.readPump()
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.byHandle[client.handle] = client
	total := len(h.byHandle)
	h.mu.Unlock()

	log.Printf("Client registered handle=%s login=%s (total clients: %d)",
		client.handle, client.login, total)
}

// unregister removes a client from the handle index and every room. It is
// safe to call twice; only the first call closes the send channel.
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	_, present := h.byHandle[client.handle]
	if present {
		delete(h.byHandle, client.handle)
		for room, members := range h.rooms {
			delete(members, client.handle)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
		close(client.send)
	}
	remaining := len(h.byHandle)
	h.mu.Unlock()

	if present {
		log.Printf("Client unregistered handle=%s login=%s (remaining clients: %d)",
			client.handle, client.login, remaining)
	}
}

// Send delivers an event to a single handle. Unknown handles are a no-op.
func (h *Hub) Send(handle, event string, payload any) {
	data, err := encodeEvent(event, payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event, err)
		return
	}

	h.mu.RLock()
	client, ok := h.byHandle[handle]
	h.mu.RUnlock()
	if !ok {
		return
	}
	client.deliver(data)
}

// JoinRoom adds a handle to a room, creating the room on first join.
func (h *Hub) JoinRoom(handle, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.byHandle[handle]
	if !ok {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]*Client)
	}
	h.rooms[room][handle] = client
}

// LeaveRoom removes a handle from a room.
func (h *Hub) LeaveRoom(handle, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, handle)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast delivers an event to every member of the given rooms except
// excludeHandle. A handle present in several of the rooms receives the
// event once.
func (h *Hub) Broadcast(rooms []string, excludeHandle, event string, payload any) {
	data, err := encodeEvent(event, payload)
	if err != nil {
		log.Printf("Failed to marshal %s broadcast: %v", event, err)
		return
	}

	h.mu.RLock()
	targets := make(map[string]*Client)
	for _, room := range rooms {
		for handle, client := range h.rooms[room] {
			if handle == excludeHandle {
				continue
			}
			targets[handle] = client
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		client.deliver(data)
	}
}

// CloseRoom drops all membership entries for the given rooms. Clients stay
// connected; only the grouping goes away.
func (h *Hub) CloseRoom(rooms ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range rooms {
		delete(h.rooms, room)
	}
}

// CloseHandle retires a superseded connection.
func (h *Hub) CloseHandle(handle string) {
	h.mu.RLock()
	client, ok := h.byHandle[handle]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.unregister(client)
	client.conn.Close()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byHandle)
}

// deliver queues data on the client's send channel; a full channel means
// the client is too slow and gets dropped.
func (c *Client) deliver(data []byte) {
	defer func() {
		// Losing the race with unregister closing the channel is fine.
		recover()
	}()
	select {
	case c.send <- data:
	default:
		go c.conn.Close()
	}
}

// readPump pumps messages from the WebSocket connection to the gateway.
func (c *Client) readPump() {
	defer func() {
		c.hub.svc.Disconnect(context.Background(), c.handle)
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		c.handleMessage(raw)
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
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

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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
