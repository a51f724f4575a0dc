package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hardyjosh/rain-oracle-server/pkg/logging"
	"github.com/hardyjosh/rain-oracle-server/pkg/metrics"
	"github.com/hardyjosh/rain-oracle-server/pkg/oracle"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	produceTimeout = 10 * time.Second
	sendBuffer     = 16
)

// ContextProducer produces as-is signed contexts.
type ContextProducer interface {
	Produce(ctx context.Context) (*oracle.SignedContext, error)
}

// StreamServer pushes a freshly signed context to every connected client
// on each tick. Nothing is cached between ticks.
type StreamServer struct {
	producer ContextProducer
	interval time.Duration
	logger   *logging.Logger
	upgrader websocket.Upgrader

	// Client management
	mu      sync.RWMutex
	clients map[*streamClient]bool
	closed  bool // Set once Run has returned; no new clients are accepted
}

// streamClient represents a connected WebSocket client.
type streamClient struct {
	conn   *websocket.Conn
	send   chan []byte
	server *StreamServer
}

// ClientMessage is a message sent by a client.
type ClientMessage struct {
	Type string `json:"type"` // "ping"
}

// ContextMessage carries one signed context.
type ContextMessage struct {
	Type      string                `json:"type"`      // "signed_context"
	Timestamp string                `json:"timestamp"` // RFC 3339
	Data      *oracle.SignedContext `json:"data"`
}

// ErrorMessage reports a failed tick.
type ErrorMessage struct {
	Type   string `json:"type"` // "error"
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// NewStreamServer creates a stream producing one context per interval.
func NewStreamServer(producer ContextProducer, interval time.Duration, logger *logging.Logger) *StreamServer {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &StreamServer{
		producer: producer,
		interval: interval,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				// Origin policy is enforced by the CORS layer
				return true
			},
		},
		clients: make(map[*streamClient]bool),
	}
}

// Run produces and broadcasts until ctx is done, then disconnects every client.
// Ticks with no connected clients skip the upstream fetch.
func (s *StreamServer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Starting signed context stream", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case <-ticker.C:
			if s.ClientCount() == 0 {
				continue
			}
			s.tick(ctx)
		}
	}
}

// ClientCount returns the number of connected clients.
func (s *StreamServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *StreamServer) tick(ctx context.Context) {
	produceCtx, cancel := context.WithTimeout(ctx, produceTimeout)
	defer cancel()

	var message interface{}
	sc, err := s.producer.Produce(produceCtx)
	if err != nil {
		_, code := classify(err)
		s.logger.Warn("Stream tick failed", "code", code, "error", err)
		message = ErrorMessage{Type: "error", Error: code, Detail: err.Error()}
	} else {
		message = ContextMessage{
			Type:      "signed_context",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Data:      sc,
		}
	}

	data, err := json.Marshal(message)
	if err != nil {
		s.logger.Error("Failed to marshal stream message", "error", err)
		return
	}
	s.broadcast(data)
}

// broadcast sends data to all clients without blocking on slow ones.
func (s *StreamServer) broadcast(data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for client := range s.clients {
		select {
		case client.send <- data:
		default:
			s.logger.Warn("Client send buffer full, skipping update")
		}
	}
}

// HandleWebSocket upgrades the connection and registers the client.
func (s *StreamServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := &streamClient{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		server: s,
	}

	if !s.registerClient(client) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()

	s.logger.Info("New WebSocket client connected", "remote", conn.RemoteAddr().String())
}

// registerClient adds a client to the server. It reports false once the
// stream has shut down.
func (s *StreamServer) registerClient(client *streamClient) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.clients[client] = true
	metrics.RecordStreamClients(len(s.clients))
	return true
}

// unregisterClient removes a client from the server.
func (s *StreamServer) unregisterClient(client *streamClient) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
		metrics.RecordStreamClients(len(s.clients))
	}
}

// closeAll disconnects every client.
func (s *StreamServer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for client := range s.clients {
		delete(s.clients, client)
		close(client.send)
	}
	metrics.RecordStreamClients(0)
}

// writePump sends messages to the WebSocket connection.
func (c *streamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.server.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads messages from the WebSocket connection.
func (c *streamClient) readPump() {
	defer func() {
		c.server.unregisterClient(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// handleMessage processes client messages.
func (c *streamClient) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.server.logger.Warn("Invalid client message", "error", err)
		return
	}

	switch msg.Type {
	case "ping":
		c.sendPong()
	default:
		c.server.logger.Warn("Unknown message type", "type", msg.Type)
	}
}

// sendPong sends a pong response.
func (c *streamClient) sendPong() {
	data, _ := json.Marshal(map[string]string{"type": "pong"})

	c.server.mu.RLock()
	defer c.server.mu.RUnlock()
	if !c.server.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
