package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/addressbook/internal/addressbook"
	"github.com/nerrad567/addressbook/internal/infrastructure/config"
	"github.com/nerrad567/addressbook/internal/infrastructure/logging"
)

// Message types exchanged on /api/v1/ws.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"

	// WSChannelAll matches every event type.
	WSChannelAll = "*"

	wsSendBufferSize = 256
)

// WSMessage is the envelope of every frame the server sends. Clients use
// the same shape for requests.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload lists the channels of a subscribe or unsubscribe
// request. Channels are event types or WSChannelAll.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

// wsRequest is an inbound frame with its payload left undecoded.
type wsRequest struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// encodeFrame stamps and encodes an outbound frame.
func encodeFrame(msg WSMessage) ([]byte, error) {
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return json.Marshal(msg)
}

// Hub fans registry events out to WebSocket subscribers. It implements
// addressbook.Notifier; a slow client misses events rather than blocking
// the registry.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

// NewHub creates an empty hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
	}
}

// Run waits for ctx to end and then drops every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*WSClient]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.shutdown()
		if c.conn != nil {
			c.conn.Close()
		}
	}
}

// Register starts delivering broadcasts to c.
func (h *Hub) Register(c *WSClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", n, "subject", c.subject)
}

// Unregister stops delivery to c and closes its outbound queue.
func (h *Hub) Unregister(c *WSClient) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	c.shutdown()
	h.logger.Debug("websocket client disconnected", "clients", n, "subject", c.subject)
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Notify broadcasts e on the channel named by its type.
func (h *Hub) Notify(e addressbook.Event) {
	h.Broadcast(string(e.Type), e)
}

// Broadcast queues payload for every client subscribed to channel.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := encodeFrame(WSMessage{Type: WSTypeEvent, EventType: channel, Payload: payload})
	if err != nil {
		h.logger.Error("failed to encode websocket event", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*WSClient, 0, len(h.clients))
	for c := range h.clients {
		if c.isSubscribed(channel) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	dropped := 0
	for _, c := range targets {
		if !c.enqueue(data) {
			dropped++
		}
	}
	if len(targets) > 0 {
		h.logger.Debug("websocket event sent", "channel", channel, "recipients", len(targets)-dropped, "dropped", dropped)
	}
}

// WSClient is one WebSocket connection and its channel subscriptions.
type WSClient struct {
	hub     *Hub
	conn    *websocket.Conn
	subject string // token subject; empty when auth is disabled

	mu       sync.Mutex
	channels map[string]struct{}
	send     chan []byte
	closed   bool
}

func newWSClient(hub *Hub, conn *websocket.Conn, subject string) *WSClient {
	return &WSClient{
		hub:      hub,
		conn:     conn,
		subject:  subject,
		channels: make(map[string]struct{}),
		send:     make(chan []byte, wsSendBufferSize),
	}
}

// enqueue queues data for the writer. It reports false when the queue is
// full or the client has shut down.
func (c *WSClient) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// shutdown closes the outbound queue once, which ends writeLoop.
func (c *WSClient) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *WSClient) isSubscribed(channel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, all := c.channels[WSChannelAll]
	_, one := c.channels[channel]
	return all || one
}

func (c *WSClient) setChannels(channels []string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range channels {
		if on {
			c.channels[ch] = struct{}{}
		} else {
			delete(c.channels, ch)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS middleware owns origin policy.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWebSocket upgrades an authorised request and starts the client's
// read and write loops.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	var subject string
	if claims := claimsFromContext(r.Context()); claims != nil {
		subject = claims.Subject
	}
	client := newWSClient(s.hub, conn, subject)
	s.hub.Register(client)

	t := newWSTimings(s.wsCfg)
	go client.writeLoop(t)
	go client.readLoop(t)
}

// wsTimings holds the keepalive durations derived from configuration.
type wsTimings struct {
	pingEvery time.Duration
	writeWait time.Duration
	readWait  time.Duration
	maxSize   int64
}

func newWSTimings(cfg config.WebSocketConfig) wsTimings {
	ping := time.Duration(cfg.PingInterval) * time.Second
	pong := time.Duration(cfg.PongTimeout) * time.Second
	return wsTimings{
		pingEvery: ping,
		writeWait: pong,
		readWait:  ping + pong,
		maxSize:   int64(cfg.MaxMessageSize),
	}
}

// readLoop handles client requests until the connection fails, then
// unregisters the client.
func (c *WSClient) readLoop(t wsTimings) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	extend := func() error { return c.conn.SetReadDeadline(time.Now().Add(t.readWait)) }
	c.conn.SetReadLimit(t.maxSize)
	_ = extend()
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err, "subject", c.subject)
			}
			return
		}
		_ = extend()
		c.handleMessage(data)
	}
}

// writeLoop drains the send queue and pings the peer. It exits when the
// queue is closed or a write fails.
func (c *WSClient) writeLoop(t wsTimings) {
	ticker := time.NewTicker(t.pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	write := func(kind int, data []byte) error {
		_ = c.conn.SetWriteDeadline(time.Now().Add(t.writeWait))
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = write(websocket.CloseMessage, nil)
				return
			}
			if write(websocket.TextMessage, data) != nil {
				return
			}
		case <-ticker.C:
			if write(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}

// handleMessage answers one client request.
func (c *WSClient) handleMessage(data []byte) {
	var req wsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.reply(WSMessage{Type: WSTypeError, Payload: errorBody("invalid JSON message")})
		return
	}

	switch req.Type {
	case WSTypeSubscribe, WSTypeUnsubscribe:
		c.updateSubscriptions(req)
	case WSTypePing:
		c.reply(WSMessage{Type: WSTypePong, ID: req.ID})
	default:
		c.reply(WSMessage{Type: WSTypeError, ID: req.ID, Payload: errorBody("unknown message type: " + req.Type)})
	}
}

func (c *WSClient) updateSubscriptions(req wsRequest) {
	var body WSSubscribePayload
	if len(req.Payload) == 0 || json.Unmarshal(req.Payload, &body) != nil {
		c.reply(WSMessage{Type: WSTypeError, ID: req.ID, Payload: errorBody("invalid " + req.Type + " payload")})
		return
	}

	on := req.Type == WSTypeSubscribe
	c.setChannels(body.Channels, on)

	key := "unsubscribed"
	if on {
		key = "subscribed"
		c.hub.logger.Info("websocket client subscribed", "channels", body.Channels, "subject", c.subject)
	}
	c.reply(WSMessage{Type: WSTypeResponse, ID: req.ID, Payload: map[string][]string{key: body.Channels}})
}

func (c *WSClient) reply(msg WSMessage) {
	data, err := encodeFrame(msg)
	if err != nil {
		c.hub.logger.Error("failed to encode websocket reply", "type", msg.Type, "error", err)
		return
	}
	c.enqueue(data)
}

func errorBody(message string) map[string]string {
	return map[string]string{"message": message}
}
