package handlers

import (
	"net/http"

	"safecity-dashboard/be/services"

	"github.com/gin-gonic/gin"
)

// MockHandler serves canned upstream payloads for local development.
type MockHandler struct {
	mock *services.MockData
}

func NewMockHandler(mock *services.MockData) *MockHandler {
	return &MockHandler{mock: mock}
}

func (h *MockHandler) serve(c *gin.Context, body []byte) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header(headerDataSource, "mock")
	c.Data(http.StatusOK, jsonContentType, body)
}

func (h *MockHandler) Events(c *gin.Context) {
	h.serve(c, h.mock.Events())
}

func (h *MockHandler) Streams(c *gin.Context) {
	h.serve(c, h.mock.Streams())
}

func (h *MockHandler) LunaStreams(c *gin.Context) {
	h.serve(c, h.mock.LunaStreams())
}

func (h *MockHandler) Dahua(c *gin.Context) {
	h.serve(c, h.mock.Dahua())
}

func (h *MockHandler) LiveRecordsDahua(c *gin.Context) {
	h.serve(c, h.mock.LiveRecordsDahua())
}

func (h *MockHandler) DahuaNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "POST method not supported for mock Dahua API"})
}
