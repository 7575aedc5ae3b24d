package handlers

import (
	"net/http"
	"strings"
	"time"

	"safecity-dashboard/be/services"

	"github.com/gin-gonic/gin"
)

// spreadRadiusMeters separates markers sharing one coordinate.
const spreadRadiusMeters = 25

// MapHandler serves the marker layers and dashboard statistics.
type MapHandler struct {
	data *DataSource
	now  func() time.Time
}

func NewMapHandler(data *DataSource) *MapHandler {
	return &MapHandler{data: data, now: time.Now}
}

func (h *MapHandler) GetEvents(c *gin.Context) {
	ctx := c.Request.Context()
	events, source, err := h.data.Events(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events data", "message": err.Error(), "markers": []any{}})
		return
	}

	markers := services.NormalizeEvents(events, h.data.ImageBase(ctx), h.now())
	markers = services.SpreadOverlapping(services.LatestPerLocation(markers), spreadRadiusMeters)

	c.Header(headerDataSource, source)
	c.JSON(http.StatusOK, gin.H{"markers": markers, "total": len(markers)})
}

func (h *MapHandler) GetCameras(c *gin.Context) {
	ctx := c.Request.Context()
	events, source, err := h.data.Events(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events data", "message": err.Error(), "cameras": []any{}})
		return
	}

	groups := services.GroupByCamera(events, h.data.ImageBase(ctx))
	c.Header(headerDataSource, source)
	c.JSON(http.StatusOK, gin.H{"cameras": groups, "total": len(groups)})
}

func (h *MapHandler) GetStreams(c *gin.Context) {
	streams, source, err := h.data.Streams(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch streams data", "message": err.Error(), "markers": []any{}})
		return
	}

	markers := services.StreamMarkers(streams)
	c.Header(headerDataSource, source)
	c.JSON(http.StatusOK, gin.H{"markers": markers, "total": len(markers)})
}

func (h *MapHandler) GetDahua(c *gin.Context) {
	cameras, source, err := h.data.DahuaCameras(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to connect to Dahua API server", "details": err.Error(), "markers": []any{}})
		return
	}

	markers := services.DahuaMarkers(cameras)
	c.Header(headerDataSource, source)
	c.JSON(http.StatusOK, gin.H{"markers": markers, "total": len(markers)})
}

// GetDahuaLatestEvent returns the newest event recorded by any of the
// comma separated track ids in the path.
func (h *MapHandler) GetDahuaLatestEvent(c *gin.Context) {
	ctx := c.Request.Context()
	trackIDs := strings.Split(c.Param("trackId"), ",")

	events, source, err := h.data.Events(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events data", "message": err.Error()})
		return
	}

	ev := services.LatestEventForTrackIDs(events, trackIDs)
	if ev == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No event found for track id"})
		return
	}

	marker, _ := services.NormalizeEvent(ev, h.data.ImageBase(ctx), h.now())
	c.Header(headerDataSource, source)
	c.JSON(http.StatusOK, gin.H{
		"event":      ev,
		"marker":     marker,
		"sample_url": services.FaceSampleURL(ev, h.data.ImageBase(ctx)),
	})
}

func (h *MapHandler) GetStreamStats(c *gin.Context) {
	streams, source, err := h.data.Streams(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch streams data", "message": err.Error()})
		return
	}

	c.Header(headerDataSource, source)
	c.JSON(http.StatusOK, services.ComputeStreamStats(streams, h.now()))
}
