package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"safecity-dashboard/be/logger"
	"safecity-dashboard/be/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

const (
	MessageTypeEvents = "events"
	MessageTypeStatus = "status"
	MessageTypePing   = "ping"
	MessageTypePong   = "pong"
)

// LiveMessage is the envelope pushed to browser sockets.
type LiveMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// LiveHub fans feed updates out to connected browsers.
type LiveHub struct {
	clients    map[*LiveClient]bool
	broadcast  chan LiveMessage
	register   chan *LiveClient
	unregister chan *LiveClient
	done       chan struct{}
	mu         sync.RWMutex
	log        *zap.Logger
}

func NewLiveHub() *LiveHub {
	return &LiveHub{
		clients:    make(map[*LiveClient]bool),
		broadcast:  make(chan LiveMessage, sendBuffer),
		register:   make(chan *LiveClient),
		unregister: make(chan *LiveClient),
		done:       make(chan struct{}),
		log:        logger.GetLoggerWith(logger.NameHub),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *LiveHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				c.closeSend()
			}
			h.mu.Unlock()
			LiveClients.Set(0)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			LiveClients.Set(float64(n))
			h.log.Info("Live client connected", zap.Uint64("client_id", c.id), zap.Int("total_clients", n))

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.broadcast:
			h.mu.RLock()
			var slow []*LiveClient
			for c := range h.clients {
				if !c.Send(msg) {
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()
			for _, c := range slow {
				h.log.Warn("Dropping slow live client", zap.Uint64("client_id", c.id))
				h.remove(c)
			}
		}
	}
}

func (h *LiveHub) remove(c *LiveClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.closeSend()
	}
	n := len(h.clients)
	h.mu.Unlock()
	LiveClients.Set(float64(n))
	h.log.Info("Live client disconnected", zap.Uint64("client_id", c.id), zap.Int("total_clients", n))
}

func (h *LiveHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client; it is dropped when the queue is full.
func (h *LiveHub) Broadcast(msg LiveMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("Broadcast queue full, dropping message", zap.String("type", msg.Type))
	}
}

func (h *LiveHub) FeedEvents(events []models.Event) {
	h.Broadcast(LiveMessage{Type: MessageTypeEvents, Data: events})
}

func (h *LiveHub) FeedStatus(status FeedStatus) {
	h.Broadcast(LiveMessage{Type: MessageTypeStatus, Data: status})
}

var liveClientIDs atomic.Uint64

type LiveClient struct {
	id   uint64
	hub  *LiveHub
	conn *websocket.Conn
	send chan LiveMessage

	sendMu sync.Mutex
	closed bool
}

func NewLiveClient(hub *LiveHub, conn *websocket.Conn) *LiveClient {
	return &LiveClient{
		id:   liveClientIDs.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan LiveMessage, sendBuffer),
	}
}

// Send queues a message for this client only. It reports false when the
// buffer is full or the client is gone.
func (c *LiveClient) Send(msg LiveMessage) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *LiveClient) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Start registers the client and runs its pumps. It returns false when the
// hub has already stopped.
func (c *LiveClient) Start() bool {
	select {
	case c.hub.register <- c:
	case <-c.hub.done:
		c.conn.Close()
		return false
	}
	go c.writePump()
	go c.readPump()
	return true
}

func (c *LiveClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg LiveMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("Unexpected live client close", zap.Uint64("client_id", c.id), zap.Error(err))
			}
			return
		}
		if msg.Type == MessageTypePing {
			c.Send(LiveMessage{Type: MessageTypePong})
		}
	}
}

func (c *LiveClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
