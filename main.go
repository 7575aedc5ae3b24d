package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"safecity-dashboard/be/config"
	"safecity-dashboard/be/database"
	"safecity-dashboard/be/handlers"
	"safecity-dashboard/be/logger"
	"safecity-dashboard/be/middleware"
	"safecity-dashboard/be/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type appHandlers struct {
	auth      *handlers.AuthHandler
	upstream  *handlers.UpstreamHandler
	endpoints *handlers.EndpointHandler
	zones     *handlers.ZoneHandler
	mock      *handlers.MockHandler
	live      *handlers.LiveHandler
	maps      *handlers.MapHandler
	pages     *handlers.PageHandler
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	logger.Init(cfg.Log)
	defer logger.Sync()
	appLog := logger.GetLogger()

	db, err := database.Initialize(cfg.Database, cfg.Upstream)
	if err != nil {
		appLog.Fatal("Failed to initialize database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	endpointService := services.NewEndpointService(db)
	resolver := services.NewEndpointResolver(endpointService, cfg.Upstream)
	upstreamService := services.NewUpstreamService(cfg.Upstream, resolver)

	mockData, err := services.NewMockData(time.Now(), nil)
	if err != nil {
		appLog.Fatal("Failed to build mock data", zap.Error(err))
	}

	hub := services.NewLiveHub()
	feed := services.NewEventFeed(cfg.Feed, upstreamService, resolver)
	if cfg.Upstream.MockFallback {
		feed.SetFallback(mockData.MockEventList())
	}
	feed.Subscribe(hub)

	go hub.Run(ctx)
	if cfg.Feed.Enabled {
		go func() {
			if err := feed.Run(ctx); err != nil {
				appLog.Error("Event feed stopped", zap.Error(err))
			}
		}()
	}

	data := handlers.NewDataSource(upstreamService, feed, mockData, cfg.Upstream.MockFallback)
	h := appHandlers{
		auth:      handlers.NewAuthHandler(cfg.JWT),
		upstream:  handlers.NewUpstreamHandler(upstreamService, mockData, cfg.Upstream.MockFallback),
		endpoints: handlers.NewEndpointHandler(endpointService, resolver),
		zones:     handlers.NewZoneHandler(db),
		mock:      handlers.NewMockHandler(mockData),
		live:      handlers.NewLiveHandler(feed, hub, cfg.Server.AllowedOrigins),
		maps:      handlers.NewMapHandler(data),
		pages:     handlers.NewPageHandler(cfg.Server.StaticDir),
	}

	router := setupRouter(h, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	appLog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func setupRouter(h appHandlers, cfg *config.Config) *gin.Engine {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Data-Source"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.pages.Register(router)

	imageLimiter := middleware.NewRateLimiterStore(rate.Limit(cfg.Limits.ImageProxyRate), cfg.Limits.ImageProxyBurst)
	requireAdmin := middleware.AuthMiddleware(cfg.JWT)

	api := router.Group("/api")
	{
		api.GET("/events", h.upstream.GetEvents)
		api.GET("/streams", h.upstream.GetStreams)
		api.GET("/dahua", h.upstream.GetDahua)
		api.GET("/proxy/*path", h.upstream.Proxy)
		api.GET("/image-proxy", middleware.RateLimit(imageLimiter), h.upstream.ImageProxy)

		auth := api.Group("/auth")
		{
			auth.POST("/login", h.auth.Login)
			auth.GET("/me", requireAdmin, h.auth.GetMe)
		}

		endpoints := api.Group("/endpoints")
		{
			endpoints.GET("", h.endpoints.ListEndpoints)
			endpoints.GET("/resolved", h.endpoints.ResolvedEndpoints)
			endpoints.GET("/:id", h.endpoints.GetEndpoint)
			endpoints.POST("", requireAdmin, h.endpoints.CreateEndpoint)
			endpoints.PUT("/:id", requireAdmin, h.endpoints.UpdateEndpoint)
			endpoints.DELETE("/:id", requireAdmin, h.endpoints.DeleteEndpoint)
		}

		zones := api.Group("/zones")
		{
			zones.GET("", h.zones.GetZones)
			zones.GET("/:id", h.zones.GetZone)
			zones.POST("", h.zones.CreateZone)
			zones.PUT("/:id", h.zones.UpdateZone)
			zones.DELETE("/:id", h.zones.DeleteZone)
		}

		mock := api.Group("/mock")
		{
			mock.GET("/events", h.mock.Events)
			mock.GET("/streams", h.mock.Streams)
			mock.GET("/luna-streams/1/streams", h.mock.LunaStreams)
			mock.GET("/dahua", h.mock.Dahua)
			mock.POST("/dahua", h.mock.DahuaNotAllowed)
			mock.GET("/live-records-dahua", h.mock.LiveRecordsDahua)
		}

		live := api.Group("/live")
		{
			live.GET("/status", h.live.GetStatus)
			live.GET("/events", h.live.GetEvents)
			live.GET("/stats", h.live.GetStats)
			live.POST("/refresh", h.live.Refresh)
			live.GET("/ws", h.live.HandleWebSocket)
		}

		maps := api.Group("/map")
		{
			maps.GET("/events", h.maps.GetEvents)
			maps.GET("/cameras", h.maps.GetCameras)
			maps.GET("/streams", h.maps.GetStreams)
			maps.GET("/dahua", h.maps.GetDahua)
			maps.GET("/dahua/:trackId/latest-event", h.maps.GetDahuaLatestEvent)
		}

		api.GET("/dashboard/streams", h.maps.GetStreamStats)
	}

	return router
}
