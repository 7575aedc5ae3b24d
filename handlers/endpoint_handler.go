package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"safecity-dashboard/be/logger"
	"safecity-dashboard/be/models"
	"safecity-dashboard/be/services"

	z "github.com/Oudwins/zog"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EndpointHandler struct {
	endpoints *services.EndpointService
	resolver  *services.EndpointResolver
	log       *zap.Logger
}

func NewEndpointHandler(endpoints *services.EndpointService, resolver *services.EndpointResolver) *EndpointHandler {
	return &EndpointHandler{
		endpoints: endpoints,
		resolver:  resolver,
		log:       logger.GetLoggerWith(logger.NameSettings),
	}
}

type CreateEndpointRequest struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Method      string `json:"method"`
	Description string `json:"description"`
	Category    string `json:"category"`
	IsActive    *bool  `json:"is_active"`
}

var createEndpointSchema = z.Struct(z.Shape{
	"Name":   z.String().Required(),
	"URL":    z.String().Required(),
	"Method": z.String().OneOf(models.EndpointMethods),
})

// Fields absent from a patch are skipped; present ones follow the create rules.
var updateEndpointSchema = z.Struct(z.Shape{
	"Name":   z.Ptr(z.String().Required()),
	"URL":    z.Ptr(z.String().Required()),
	"Method": z.Ptr(z.String().OneOf(models.EndpointMethods)),
})

var msgInvalidMethod = "Method must be one of " + strings.Join(models.EndpointMethods, ", ")

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (h *EndpointHandler) ListEndpoints(c *gin.Context) {
	filter := services.EndpointFilter{Category: c.Query("category")}
	if active, ok := c.GetQuery("active"); ok {
		isActive := active == "true"
		filter.Active = &isActive
	}

	endpoints, err := h.endpoints.List(c.Request.Context(), filter)
	if err != nil {
		h.log.Error("Failed to fetch endpoints", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch endpoints"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": endpoints})
}

func (h *EndpointHandler) GetEndpoint(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Endpoint not found"})
		return
	}

	endpoint, err := h.endpoints.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrEndpointNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Endpoint not found"})
			return
		}
		h.log.Error("Failed to fetch endpoint", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch endpoint"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": endpoint})
}

func (h *EndpointHandler) CreateEndpoint(c *gin.Context) {
	var req CreateEndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}
	req.Method = strings.ToUpper(strings.TrimSpace(req.Method))
	req.Name = strings.TrimSpace(req.Name)
	req.URL = strings.TrimSpace(req.URL)

	if issues := createEndpointSchema.Validate(&req); len(issues) > 0 {
		msg := "Name and URL are required"
		if req.Name != "" && req.URL != "" {
			msg = msgInvalidMethod
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
		return
	}

	endpoint := models.Endpoint{
		Name:        req.Name,
		URL:         req.URL,
		Method:      req.Method,
		Description: req.Description,
		Category:    req.Category,
		IsActive:    true,
	}
	if req.IsActive != nil {
		endpoint.IsActive = *req.IsActive
	}

	if err := h.endpoints.Create(c.Request.Context(), &endpoint); err != nil {
		if errors.Is(err, services.ErrEndpointNameTaken) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Endpoint name already exists"})
			return
		}
		h.log.Error("Failed to create endpoint", zap.String("name", req.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create endpoint"})
		return
	}

	h.log.Info("Endpoint created", zap.String("name", endpoint.Name), zap.String("method", endpoint.Method))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    endpoint,
		"message": "Endpoint created successfully",
	})
}

func (h *EndpointHandler) UpdateEndpoint(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Endpoint not found"})
		return
	}

	var patch services.EndpointPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}
	if patch.Method != nil {
		method := strings.ToUpper(strings.TrimSpace(*patch.Method))
		patch.Method = &method
		if method == "" {
			patch.Method = nil
		}
	}
	trimPtr(patch.Name)
	trimPtr(patch.URL)

	if issues := updateEndpointSchema.Validate(&patch); len(issues) > 0 {
		msg := msgInvalidMethod
		if (patch.Name != nil && *patch.Name == "") || (patch.URL != nil && *patch.URL == "") {
			msg = "Name and URL cannot be empty"
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
		return
	}

	endpoint, err := h.endpoints.Update(c.Request.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEndpointNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Endpoint not found"})
		case errors.Is(err, services.ErrEndpointNameTaken):
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Endpoint name already exists"})
		default:
			h.log.Error("Failed to update endpoint", zap.Uint("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update endpoint"})
		}
		return
	}

	h.log.Info("Endpoint updated", zap.Uint("id", id), zap.String("name", endpoint.Name))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    endpoint,
		"message": "Endpoint updated successfully",
	})
}

func (h *EndpointHandler) DeleteEndpoint(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Endpoint not found"})
		return
	}

	if err := h.endpoints.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrEndpointNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Endpoint not found"})
			return
		}
		h.log.Error("Failed to delete endpoint", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete endpoint"})
		return
	}

	h.log.Info("Endpoint deleted", zap.Uint("id", id))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Endpoint deleted successfully"})
}

// ResolvedEndpoints reports the effective address of every well-known
// endpoint, falling back to the built-in defaults for missing rows.
func (h *EndpointHandler) ResolvedEndpoints(c *gin.Context) {
	ctx := c.Request.Context()
	resolved := make(map[string]string, len(services.DefaultEndpointURLs))
	for name, fallback := range services.DefaultEndpointURLs {
		resolved[name] = h.resolver.Resolve(ctx, name, fallback)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"endpoints":     resolved,
			"api_base":      h.resolver.APIBase(ctx),
			"streams_base":  h.resolver.StreamsBase(ctx),
			"dahua_base":    h.resolver.DahuaBase(ctx),
			"websocket_url": h.resolver.WebSocketURL(ctx),
		},
	})
}
