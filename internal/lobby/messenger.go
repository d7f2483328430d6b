package lobby

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const clientSendBuffer = 64

// Hub is the WebSocket Messenger implementation: one connection per
// player, each with its own buffered send queue and write pump.
type Hub struct {
	logger       *zap.Logger
	writeTimeout time.Duration
	pongTimeout  time.Duration
	pingInterval time.Duration
	maxMsgSize   int64

	mu      sync.RWMutex
	clients map[string]*client
}

// HubOptions tune connection timeouts. Zero values fall back to
// defaults.
type HubOptions struct {
	WriteTimeout   time.Duration
	PongTimeout    time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
}

// NewHub creates an empty hub.
func NewHub(opts HubOptions, logger *zap.Logger) *Hub {
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.PongTimeout == 0 {
		opts.PongTimeout = 60 * time.Second
	}
	if opts.PingInterval == 0 {
		opts.PingInterval = opts.PongTimeout * 9 / 10
	}
	if opts.MaxMessageSize == 0 {
		opts.MaxMessageSize = 64 * 1024
	}
	return &Hub{
		logger:       logger,
		writeTimeout: opts.WriteTimeout,
		pongTimeout:  opts.PongTimeout,
		pingInterval: opts.PingInterval,
		maxMsgSize:   opts.MaxMessageSize,
		clients:      make(map[string]*client),
	}
}

type client struct {
	playerID string
	conn     *websocket.Conn
	send     chan []byte
	closed   chan struct{}
	once     sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.closed)
		c.conn.Close()
	})
}

// Attach registers an upgraded connection for a player, replacing any
// previous connection, and starts its write pump. The returned read
// function blocks for the next text message.
func (h *Hub) Attach(playerID string, conn *websocket.Conn) func() ([]byte, error) {
	c := &client{
		playerID: playerID,
		conn:     conn,
		send:     make(chan []byte, clientSendBuffer),
		closed:   make(chan struct{}),
	}

	h.mu.Lock()
	if old, ok := h.clients[playerID]; ok {
		old.close()
	}
	h.clients[playerID] = c
	h.mu.Unlock()

	conn.SetReadLimit(h.maxMsgSize)
	conn.SetReadDeadline(time.Now().Add(h.pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongTimeout))
	})

	go h.writePump(c)

	return func() ([]byte, error) {
		_, data, err := conn.ReadMessage()
		return data, err
	}
}

// Detach removes a player's connection if it is still the one given.
func (h *Hub) Detach(playerID string, conn *websocket.Conn) {
	h.mu.Lock()
	c, ok := h.clients[playerID]
	if ok && c.conn == conn {
		delete(h.clients, playerID)
	} else {
		c = nil
	}
	h.mu.Unlock()
	if c != nil {
		c.close()
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("write failed, dropping connection",
					zap.String("player_id", c.playerID), zap.Error(err))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}

// Send delivers one message to a player. A full send queue counts as a
// delivery failure rather than blocking the caller.
func (h *Hub) Send(ctx context.Context, playerID string, message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encoding message for %s: %w", playerID, err)
	}

	h.mu.RLock()
	c, ok := h.clients[playerID]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("player %s is not connected", playerID)
	}

	select {
	case c.send <- data:
		return nil
	case <-c.closed:
		return fmt.Errorf("player %s disconnected", playerID)
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("send queue full for player %s", playerID)
	}
}

// Broadcast delivers a message to every connected player. Slow clients
// are skipped, not waited on.
func (h *Hub) Broadcast(ctx context.Context, message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encoding broadcast: %w", err)
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- data:
		default:
			h.logger.Debug("skipping slow client in broadcast",
				zap.String("player_id", c.playerID))
		}
	}
	return nil
}

// Upgrader is the shared HTTP-to-WebSocket upgrader. Origin checking
// is left to the deployment's reverse proxy.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}
