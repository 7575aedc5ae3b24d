package handlers

import (
	"net/http"
	"slices"

	"safecity-dashboard/be/logger"
	"safecity-dashboard/be/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type LiveHandler struct {
	feed     *services.EventFeed
	hub      *services.LiveHub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewLiveHandler accepts browser sockets from allowedOrigins, or from any
// origin when the list is empty.
func NewLiveHandler(feed *services.EventFeed, hub *services.LiveHub, allowedOrigins []string) *LiveHandler {
	return &LiveHandler{
		feed: feed,
		hub:  hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin)
			},
			EnableCompression: true,
		},
		log: logger.GetLoggerWith(logger.NameHub),
	}
}

func (h *LiveHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"feed":    h.feed.State(),
		"clients": h.hub.ClientCount(),
	})
}

// GetEvents returns the feed buffer filtered by ?city= and ?q=.
func (h *LiveHandler) GetEvents(c *gin.Context) {
	events := services.FilterEvents(h.feed.Events(), c.Query("city"), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  len(events),
		"status": h.feed.State().Status,
	})
}

func (h *LiveHandler) GetStats(c *gin.Context) {
	events := services.FilterEvents(h.feed.Events(), c.Query("city"), c.Query("q"))
	c.JSON(http.StatusOK, services.ComputeLiveStats(events))
}

func (h *LiveHandler) Refresh(c *gin.Context) {
	added, err := h.feed.Refresh(c.Request.Context())
	if err != nil {
		h.log.Warn("Manual refresh failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to refresh events", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"added": len(added),
		"total": len(h.feed.Events()),
	})
}

// HandleWebSocket upgrades the request and sends the current status and
// buffer before streaming updates.
func (h *LiveHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := services.NewLiveClient(h.hub, conn)
	client.Send(services.LiveMessage{Type: services.MessageTypeStatus, Data: h.feed.State().Status})
	client.Send(services.LiveMessage{Type: services.MessageTypeEvents, Data: h.feed.Events()})
	client.Start()
}
