package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeTimeout is the deadline for a single write to the server.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the client sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// defaultSendBuffer is the outgoing frame buffer depth when Options does
	// not set one.
	defaultSendBuffer = 64

	// defaultDialTimeout bounds the WebSocket handshake.
	defaultDialTimeout = 10 * time.Second

	backoffInitial    = 1 * time.Second
	backoffMax        = 60 * time.Second
	backoffMultiplier = 2.0
)

// Options configures a Client.
type Options struct {
	// URL is the WebSocket endpoint (ws:// or wss://), e.g.
	// "ws://frigate:5000/ws". Required.
	URL string

	// APIURL is the HTTP base URL used to fetch the server configuration on
	// connect, e.g. "http://frigate:5000". Leave empty to skip seeding.
	APIURL string

	// Header is applied to the WebSocket handshake and the config fetch.
	Header http.Header

	// DialTimeout bounds the WebSocket handshake (default 10s).
	DialTimeout time.Duration

	// SendBuffer is the outgoing frame buffer depth (default 64). When the
	// buffer is full the oldest queued frame is evicted.
	SendBuffer int

	// HTTPClient is used for the config fetch. Defaults to a client with
	// DialTimeout as its overall timeout.
	HTTPClient *http.Client
}

// Client mirrors the server's topic/payload stream into a State and publishes
// control frames back over the same connection.
type Client struct {
	opts       Options
	state      *State
	out        chan Message
	httpClient *http.Client
	connected  atomic.Bool

	dialFn func(ctx context.Context) (*websocket.Conn, error) // injectable for tests
}

// New creates a Client with the given options. Call Run to connect.
func New(opts Options) *Client {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.DialTimeout}
	}
	c := &Client{
		opts:       opts,
		state:      NewState(),
		out:        make(chan Message, opts.SendBuffer),
		httpClient: httpClient,
	}
	c.dialFn = c.dial
	return c
}

// State returns the topic state mirror. Safe for concurrent use.
func (c *Client) State() *State { return c.state }

// Connected reports whether the WebSocket connection is currently open.
func (c *Client) Connected() bool { return c.connected.Load() }

// Publish sends a {topic, payload, retain} frame to the server. When the
// connection is not open the frame is dropped silently — the channel makes
// no delivery guarantees. When the outgoing buffer is full the oldest queued
// frame is evicted to make room.
func (c *Client) Publish(topic string, payload any, retain bool) {
	if !c.connected.Load() {
		slog.Debug("client: publish dropped, connection not open", "topic", topic)
		return
	}
	msg, err := newMessage(topic, payload, retain)
	if err != nil {
		slog.Debug("client: publish dropped, payload not encodable", "topic", topic, "err", err)
		return
	}
	select {
	case c.out <- msg:
	default:
		select {
		case <-c.out:
			slog.Warn("client: send buffer full, evicted oldest frame",
				"topic", topic, "buffer_cap", cap(c.out))
		default:
		}
		c.out <- msg
	}
}

// Run connects to the server and serves the connection until ctx is
// cancelled, reconnecting with exponential backoff after failures. On each
// successful connect the server configuration is fetched (when APIURL is
// set) and the state mirror is seeded from it.
func (c *Client) Run(ctx context.Context) {
	bo := newBackoff()

	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := c.dialFn(ctx)
		if err != nil {
			wait := bo.next()
			slog.Error("client: dial failed, will retry",
				"url", c.opts.URL, "err", err, "retry_in", wait)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
				continue
			}
		}

		slog.Info("client: connected", "url", c.opts.URL)
		bo.reset()
		c.seedFromServer(ctx)

		c.connected.Store(true)
		err = c.serve(ctx, conn)
		c.connected.Store(false)
		c.drainQueue()

		if ctx.Err() != nil {
			return
		}

		wait := bo.next()
		slog.Warn("client: connection lost, will reconnect",
			"url", c.opts.URL, "err", err, "retry_in", wait)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// seedFromServer fetches the server configuration and seeds the feature
// topics. A fetch failure is logged and skipped — pushed state will fill the
// mirror as frames arrive.
func (c *Client) seedFromServer(ctx context.Context) {
	if c.opts.APIURL == "" {
		return
	}
	cfg, err := FetchConfig(ctx, c.httpClient, c.opts.APIURL, c.opts.Header)
	if err != nil {
		slog.Warn("client: config fetch failed, skipping seed", "err", err)
		return
	}
	c.state.Seed(cfg)
	slog.Debug("client: state seeded from config", "cameras", len(cfg.Cameras))
}

// serve runs the read and write pumps for one connection. It returns when
// the connection closes or ctx is cancelled.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) error {
	writeCtx, stopWriter := context.WithCancel(ctx)
	defer stopWriter()

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		c.writePump(writeCtx, conn)
	}()

	err := c.readPump(conn) // blocks until the connection closes
	stopWriter()
	<-writeDone
	return err
}

// readPump decodes inbound frames into the state mirror. Malformed frames
// and frames without a topic are skipped. Blocks until the connection closes.
func (c *Client) readPump(conn *websocket.Conn) error {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Topic == "" {
			slog.Debug("client: ignoring malformed frame", "size", len(data))
			continue
		}
		c.state.Set(msg.Topic, msg.Payload, msg.Retain)
	}
}

// writePump drains the outgoing buffer and sends periodic ping frames.
// Closing the connection on exit unblocks the read pump.
func (c *Client) writePump(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			conn.WriteMessage(websocket.CloseMessage, //nolint:errcheck
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case msg := <-c.out:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drainQueue discards frames queued but not sent before a disconnect.
func (c *Client) drainQueue() {
	dropped := 0
	for {
		select {
		case <-c.out:
			dropped++
		default:
			if dropped > 0 {
				slog.Debug("client: dropped unsent frames on disconnect", "count", dropped)
			}
			return
		}
	}
}

// dial opens the WebSocket connection using the configured URL and headers.
func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: c.opts.DialTimeout}
	conn, resp, err := dialer.DialContext(ctx, c.opts.URL, c.opts.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// backoff implements truncated exponential backoff with jitter.
type backoff struct {
	current time.Duration
}

func newBackoff() *backoff {
	return &backoff{current: backoffInitial}
}

// next returns the current backoff duration and advances the internal state.
func (b *backoff) next() time.Duration {
	d := b.current
	// Apply ±25 % jitter.
	jitter := time.Duration(float64(b.current) * 0.25 * (rand.Float64()*2 - 1)) //nolint:gosec // not crypto
	d += jitter
	if d < 0 {
		d = 0
	}

	b.current = time.Duration(float64(b.current) * backoffMultiplier)
	if b.current > backoffMax {
		b.current = backoffMax
	}
	return d
}

func (b *backoff) reset() {
	b.current = backoffInitial
}
