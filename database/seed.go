package database

import (
	"fmt"

	"safecity-dashboard/be/config"
	"safecity-dashboard/be/logger"
	"safecity-dashboard/be/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultEndpoints is the table content written on first start. Base, socket
// and direct rows point at the configured upstreams.
func DefaultEndpoints(u config.UpstreamConfig) []models.Endpoint {
	return []models.Endpoint{
		{Name: "events", URL: "/api/events?page=1&page_size=200", Method: models.MethodGET, Description: "Fetch events data from luna-streams API", Category: "events"},
		{Name: "streams", URL: "/api/streams", Method: models.MethodGET, Description: "Fetch streams data from luna-streams API", Category: "streams"},
		{Name: "dahua", URL: "/api/dahua?page=1&page_size=200", Method: models.MethodGET, Description: "Fetch Dahua cameras data", Category: "cameras"},
		{Name: "events_ws", URL: u.EventsWSURL(), Method: models.MethodWS, Description: "WebSocket connection for real-time events", Category: "websocket"},
		{Name: "events_direct", URL: u.APIBase + "/6/events", Method: models.MethodGET, Description: "Direct events API endpoint", Category: "backend"},
		{Name: "streams_direct", URL: u.StreamsBase + "/api/luna-streams/1/streams", Method: models.MethodGET, Description: "Direct luna-streams API endpoint", Category: "backend"},
		{Name: "dahua_direct", URL: u.DahuaBase + "/cameras", Method: models.MethodGET, Description: "Direct Dahua cameras API endpoint", Category: "backend"},
		{Name: "proxy_api", URL: "/api/proxy", Method: models.MethodGET, Description: "Generic proxy API for upstream services", Category: "proxy"},
		{Name: "image_proxy", URL: "/api/image-proxy", Method: models.MethodGET, Description: "Image proxy for CORS bypass", Category: "proxy"},
		{Name: "api_base", URL: u.APIBase, Method: models.MethodBASE, Description: "Base URL for main API server", Category: "config"},
		{Name: "streams_base", URL: u.StreamsBase, Method: models.MethodBASE, Description: "Base URL for luna-streams server", Category: "config"},
		{Name: "dahua_base", URL: u.DahuaBase, Method: models.MethodBASE, Description: "Base URL for Dahua server", Category: "config"},
	}
}

// ProductionEndpoints routes every consumer through this service's own
// /api routes and adds the mock routes for testing.
func ProductionEndpoints() []models.Endpoint {
	return []models.Endpoint{
		{Name: "events", URL: "/api/events?page=1&page_size=200", Method: models.MethodGET, Description: "Internal events API endpoint", Category: "api"},
		{Name: "streams", URL: "/api/streams", Method: models.MethodGET, Description: "Internal streams API endpoint", Category: "api"},
		{Name: "dahua", URL: "/api/dahua?page=1&page_size=200", Method: models.MethodGET, Description: "Internal Dahua cameras API endpoint", Category: "api"},
		{Name: "proxy_api", URL: "/api/proxy", Method: models.MethodGET, Description: "Generic proxy API for upstream services", Category: "proxy"},
		{Name: "image_proxy", URL: "/api/image-proxy", Method: models.MethodGET, Description: "Image proxy for CORS bypass", Category: "proxy"},
		{Name: "mock_events", URL: "/api/mock/events", Method: models.MethodGET, Description: "Mock events data for testing", Category: "mock"},
		{Name: "mock_streams", URL: "/api/mock/streams", Method: models.MethodGET, Description: "Mock streams data for testing", Category: "mock"},
		{Name: "mock_dahua", URL: "/api/mock/dahua", Method: models.MethodGET, Description: "Mock Dahua cameras data for testing", Category: "mock"},
	}
}

// SeedDefaultEndpoints fills an empty endpoints table. A non-empty table is
// left untouched.
func SeedDefaultEndpoints(db *gorm.DB, upstream config.UpstreamConfig) error {
	var count int64
	if err := db.Model(&models.Endpoint{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count endpoints: %w", err)
	}
	if count > 0 {
		return nil
	}

	endpoints := DefaultEndpoints(upstream)
	for i := range endpoints {
		endpoints[i].IsActive = true
	}
	if err := db.Create(&endpoints).Error; err != nil {
		return fmt.Errorf("failed to insert default endpoints: %w", err)
	}

	logger.GetLoggerWith(logger.NameDatabase).Info("Default endpoints created", zap.Int("count", len(endpoints)))
	return nil
}

// UpsertEndpoints writes each endpoint by name, creating missing rows and
// overwriting url, method, description and category of existing ones.
func UpsertEndpoints(db *gorm.DB, endpoints []models.Endpoint) (created, updated int, err error) {
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, ep := range endpoints {
			var existing models.Endpoint
			res := tx.Where("name = ?", ep.Name).Limit(1).Find(&existing)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				ep.IsActive = true
				if err := tx.Create(&ep).Error; err != nil {
					return err
				}
				created++
				continue
			}
			if err := tx.Model(&existing).Updates(map[string]any{
				"url":         ep.URL,
				"method":      ep.Method,
				"description": ep.Description,
				"category":    ep.Category,
				"is_active":   true,
			}).Error; err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	return created, updated, err
}
