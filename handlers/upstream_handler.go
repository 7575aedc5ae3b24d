package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"safecity-dashboard/be/logger"
	"safecity-dashboard/be/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	jsonContentType  = "application/json; charset=utf-8"
	headerDataSource = "X-Data-Source"
)

// UpstreamHandler serves the thin proxy routes in front of the events,
// streams and Dahua services.
type UpstreamHandler struct {
	upstream     *services.UpstreamService
	mock         *services.MockData
	mockFallback bool
	log          *zap.Logger
}

func NewUpstreamHandler(upstream *services.UpstreamService, mock *services.MockData, mockFallback bool) *UpstreamHandler {
	return &UpstreamHandler{
		upstream:     upstream,
		mock:         mock,
		mockFallback: mockFallback,
		log:          logger.GetLoggerWith(logger.NameHTTP, zap.String(logger.FieldCategory, "upstream")),
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v > 0 {
		return v
	}
	return def
}

// serveMock answers with canned data after an upstream failure. It reports
// false when mock fallback is off.
func (h *UpstreamHandler) serveMock(c *gin.Context, target string, cause error) bool {
	if !h.mockFallback || h.mock == nil {
		return false
	}
	body, ok := h.mock.Payload(target)
	if !ok {
		return false
	}
	services.MockFallbacks.WithLabelValues(target).Inc()
	h.log.Warn("Serving mock data after upstream failure", zap.String("target", target), zap.Error(cause))
	c.Header(headerDataSource, "mock")
	c.Data(http.StatusOK, jsonContentType, body)
	return true
}

func (h *UpstreamHandler) GetEvents(c *gin.Context) {
	body, err := h.upstream.FetchEvents(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "page_size", 200))
	if err != nil {
		if h.serveMock(c, services.TargetEvents, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch events data",
			"message": err.Error(),
			"events":  []any{},
		})
		return
	}
	c.Data(http.StatusOK, jsonContentType, body)
}

func (h *UpstreamHandler) GetStreams(c *gin.Context) {
	body, err := h.upstream.FetchStreams(c.Request.Context())
	if err != nil {
		if h.serveMock(c, services.TargetStreams, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch streams data",
			"message": err.Error(),
			"streams": []any{},
		})
		return
	}
	c.Data(http.StatusOK, jsonContentType, body)
}

func (h *UpstreamHandler) GetDahua(c *gin.Context) {
	body, err := h.upstream.FetchDahua(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "page_size", 200))
	if err != nil {
		var statusErr *services.UpstreamStatusError
		if errors.As(err, &statusErr) {
			c.JSON(statusErr.StatusCode, gin.H{"error": fmt.Sprintf("Server responded with status %d", statusErr.StatusCode)})
			return
		}
		if h.serveMock(c, services.TargetDahua, err) {
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to connect to Dahua API server",
			"details": err.Error(),
		})
		return
	}
	c.Data(http.StatusOK, jsonContentType, body)
}

// Proxy forwards GET /api/proxy/<path> to the streams service untouched.
func (h *UpstreamHandler) Proxy(c *gin.Context) {
	resp, err := h.upstream.Forward(c.Request.Context(), c.Param("path"), c.Request.URL.RawQuery)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Proxy fetch failed", "detail": err.Error()})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(resp.StatusCode, resp.ContentType, resp.Body)
}

func (h *UpstreamHandler) ImageProxy(c *gin.Context) {
	target := strings.TrimSpace(c.Query("url"))
	if target == "" {
		c.String(http.StatusBadRequest, "Missing url parameter")
		return
	}

	resp, err := h.upstream.FetchImage(c.Request.Context(), target)
	if err != nil {
		h.log.Debug("Image proxy failed", zap.String("url", target), zap.Error(err))
		c.String(http.StatusBadGateway, "Proxy failed")
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Data(resp.StatusCode, resp.ContentType, resp.Body)
}
