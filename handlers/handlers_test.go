package handlers

import (
	"bytes"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"safecity-dashboard/be/config"
	"safecity-dashboard/be/database"
	"safecity-dashboard/be/logger"
	"safecity-dashboard/be/middleware"
	"safecity-dashboard/be/services"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type testOptions struct {
	upstream     http.Handler
	mockFallback bool
	jwt          config.JWTConfig
	imageLimiter *middleware.RateLimiterStore
	staticDir    string
}

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	feed     *services.EventFeed
	baseURL  string
	upstream *services.UpstreamService
}

// newTestEnv wires the handlers against an in-memory database and a fake
// upstream. A nil upstream handler points every base at a closed server.
func newTestEnv(t *testing.T, opts testOptions) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.SetTestLoggerNop()

	db, err := database.Open(database.UseMemorySqliteDialector(), database.PoolOptions{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	var baseURL string
	if opts.upstream != nil {
		srv := httptest.NewServer(opts.upstream)
		t.Cleanup(srv.Close)
		baseURL = srv.URL
	} else {
		srv := httptest.NewServer(http.NotFoundHandler())
		baseURL = srv.URL
		srv.Close()
	}

	upCfg := config.UpstreamConfig{
		APIBase:      baseURL,
		StreamsBase:  baseURL,
		DahuaBase:    baseURL,
		Timeout:      2 * time.Second,
		MockFallback: opts.mockFallback,
	}
	endpointService := services.NewEndpointService(db)
	resolver := services.NewEndpointResolver(endpointService, upCfg)
	upstream := services.NewUpstreamService(upCfg, resolver)

	mock, err := services.NewMockData(time.Now(), rand.New(rand.NewPCG(7, 11)))
	require.NoError(t, err)

	feed := services.NewEventFeed(config.FeedConfig{MaxEvents: 100}, upstream, resolver)
	hub := services.NewLiveHub()

	h := struct {
		auth      *AuthHandler
		upstream  *UpstreamHandler
		endpoints *EndpointHandler
		zones     *ZoneHandler
		mock      *MockHandler
		live      *LiveHandler
		maps      *MapHandler
		pages     *PageHandler
	}{
		auth:      NewAuthHandler(opts.jwt),
		upstream:  NewUpstreamHandler(upstream, mock, opts.mockFallback),
		endpoints: NewEndpointHandler(endpointService, resolver),
		zones:     NewZoneHandler(db),
		mock:      NewMockHandler(mock),
		live:      NewLiveHandler(feed, hub, nil),
		maps:      NewMapHandler(NewDataSource(upstream, feed, mock, opts.mockFallback)),
		pages:     NewPageHandler(opts.staticDir),
	}

	limiter := opts.imageLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiterStore(rate.Inf, 1)
	}
	requireAdmin := middleware.AuthMiddleware(opts.jwt)

	router := gin.New()
	h.pages.Register(router)
	api := router.Group("/api")
	api.GET("/events", h.upstream.GetEvents)
	api.GET("/streams", h.upstream.GetStreams)
	api.GET("/dahua", h.upstream.GetDahua)
	api.GET("/proxy/*path", h.upstream.Proxy)
	api.GET("/image-proxy", middleware.RateLimit(limiter), h.upstream.ImageProxy)
	api.POST("/auth/login", h.auth.Login)
	api.GET("/auth/me", requireAdmin, h.auth.GetMe)
	api.GET("/endpoints", h.endpoints.ListEndpoints)
	api.GET("/endpoints/resolved", h.endpoints.ResolvedEndpoints)
	api.GET("/endpoints/:id", h.endpoints.GetEndpoint)
	api.POST("/endpoints", requireAdmin, h.endpoints.CreateEndpoint)
	api.PUT("/endpoints/:id", requireAdmin, h.endpoints.UpdateEndpoint)
	api.DELETE("/endpoints/:id", requireAdmin, h.endpoints.DeleteEndpoint)
	api.GET("/zones", h.zones.GetZones)
	api.GET("/zones/:id", h.zones.GetZone)
	api.POST("/zones", h.zones.CreateZone)
	api.PUT("/zones/:id", h.zones.UpdateZone)
	api.DELETE("/zones/:id", h.zones.DeleteZone)
	api.GET("/mock/events", h.mock.Events)
	api.GET("/mock/dahua", h.mock.Dahua)
	api.POST("/mock/dahua", h.mock.DahuaNotAllowed)
	api.GET("/live/status", h.live.GetStatus)
	api.GET("/live/events", h.live.GetEvents)
	api.GET("/live/stats", h.live.GetStats)
	api.POST("/live/refresh", h.live.Refresh)
	api.GET("/map/events", h.maps.GetEvents)
	api.GET("/map/cameras", h.maps.GetCameras)
	api.GET("/map/streams", h.maps.GetStreams)
	api.GET("/map/dahua", h.maps.GetDahua)
	api.GET("/map/dahua/:trackId/latest-event", h.maps.GetDahuaLatestEvent)
	api.GET("/dashboard/streams", h.maps.GetStreamStats)

	return &testEnv{router: router, db: db, feed: feed, baseURL: baseURL, upstream: upstream}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
