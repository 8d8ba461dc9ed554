package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/a-jackson/frigate/pkg/client"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the hub sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing frame buffer depth.
	sendBufSize = 64

	// maxFrameSize bounds inbound control frames from dashboard clients.
	maxFrameSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins — callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Publisher is the upstream send path for frames received from dashboard
// clients. Satisfied by *client.Client.
type Publisher interface {
	Publish(topic string, payload any, retain bool)
}

// Hub manages dashboard WebSocket connections. It replays the current mirror
// state on connect, broadcasts every mirror update, and forwards inbound
// frames to the Publisher.
type Hub struct {
	state *client.State
	pub   Publisher

	mu      sync.RWMutex
	clients map[*hubClient]struct{}
}

// hubClient represents one connected dashboard client.
type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates a Hub reading from state and forwarding inbound frames to pub.
func New(state *client.State, pub Publisher) *Hub {
	return &Hub{
		state:   state,
		pub:     pub,
		clients: make(map[*hubClient]struct{}),
	}
}

// Run consumes the mirror's update stream and broadcasts each update to all
// connected clients. Run blocks until ctx is cancelled, then closes all
// active connections.
func (h *Hub) Run(ctx context.Context) {
	updates, cancel := h.state.WatchAll()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg, ok := <-updates:
			if !ok {
				h.closeAll()
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			h.broadcast(data)
		}
	}
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the client.
// The current mirror state is replayed immediately on connect, one frame per
// topic. Blocks until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &hubClient{
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
	h.register(c)
	defer h.unregister(c)

	h.replay(c)

	go c.writePump()
	c.readPump(h.pub) // blocks until connection closes
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *hubClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *hubClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// replay queues one frame per currently held topic so the client starts with
// the full retained state.
//
// Sends to a client's channel happen only under mu, read or write; closing
// the channel requires the write lock, so a send can never race a close.
func (h *Hub) replay(c *hubClient) {
	entries := h.state.All()

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	for topic, e := range entries {
		data, err := json.Marshal(client.Message{
			Topic:   topic,
			Payload: e.Payload,
			Retain:  e.Retain,
		})
		if err != nil {
			continue
		}
		select {
		case c.send <- data:
		default:
			return // buffer full — the client will catch up from broadcasts
		}
	}
}

func (h *Hub) broadcast(data []byte) {
	var slow []*hubClient

	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	// Clients whose outgoing buffer is full are disconnected.
	for _, c := range slow {
		h.unregister(c)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// writePump drains the client's send channel and forwards frames to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *hubClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel was closed (hub is shutting down or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads frames from the connection and forwards well-formed
// {topic, payload, retain} frames to the publisher. Malformed frames and
// frames without a topic are ignored. Blocks until the connection closes.
func (c *hubClient) readPump(pub Publisher) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg client.Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Topic == "" {
			continue
		}
		if pub != nil {
			pub.Publish(msg.Topic, msg.Payload, msg.Retain)
		}
	}
}
