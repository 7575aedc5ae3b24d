package services

import (
	"context"
	"errors"

	"safecity-dashboard/be/config"
	"safecity-dashboard/be/logger"
	"safecity-dashboard/be/models"

	"go.uber.org/zap"
)

// Endpoint names with a meaning to the server itself.
const (
	EndpointAPIBase     = "api_base"
	EndpointStreamsBase = "streams_base"
	EndpointDahuaBase   = "dahua_base"
	EndpointEventsWS    = "events_ws"
)

// DefaultEndpointURLs is what browser pages use when the endpoints table
// cannot be read.
var DefaultEndpointURLs = map[string]string{
	"events":    "/api/events?page=1&page_size=200",
	"streams":   "/api/streams",
	"dahua":     "/api/dahua?page=1&page_size=200",
	"events_ws": "ws://192.168.18.70:5000/6/events/ws",
}

// EndpointResolver maps endpoint names to URLs, preferring active rows in
// the endpoints table over configuration. Addresses set explicitly in the
// environment win over the table.
type EndpointResolver struct {
	lookup EndpointLookup
	cfg    config.UpstreamConfig
	log    *zap.Logger
}

func NewEndpointResolver(lookup EndpointLookup, cfg config.UpstreamConfig) *EndpointResolver {
	return &EndpointResolver{
		lookup: lookup,
		cfg:    cfg,
		log:    logger.GetLoggerWith(logger.NameUpstream, zap.String(logger.FieldCategory, "resolver")),
	}
}

func (r *EndpointResolver) Resolve(ctx context.Context, name, fallback string) string {
	if r.lookup == nil {
		return fallback
	}
	endpoint, err := r.lookup.FindActiveByName(ctx, name)
	if err != nil {
		if !errors.Is(err, ErrEndpointNotFound) {
			r.log.Warn("Endpoint lookup failed, using fallback", zap.String("name", name), zap.Error(err))
		}
		return fallback
	}
	if endpoint == nil || endpoint.URL == "" {
		return fallback
	}
	return endpoint.URL
}

func (r *EndpointResolver) APIBase(ctx context.Context) string {
	return r.resolveBase(ctx, EndpointAPIBase, r.cfg.APIBase, r.cfg.APIBaseFromEnv)
}

func (r *EndpointResolver) StreamsBase(ctx context.Context) string {
	return r.resolveBase(ctx, EndpointStreamsBase, r.cfg.StreamsBase, r.cfg.StreamsBaseFromEnv)
}

func (r *EndpointResolver) DahuaBase(ctx context.Context) string {
	return r.resolveBase(ctx, EndpointDahuaBase, r.cfg.DahuaBase, r.cfg.DahuaBaseFromEnv)
}

func (r *EndpointResolver) resolveBase(ctx context.Context, name, configured string, pinned bool) string {
	if pinned {
		return trimSlash(configured)
	}
	return trimSlash(r.Resolve(ctx, name, configured))
}

// WebSocketURL returns the first active WS endpoint, falling back to the
// socket derived from configuration.
func (r *EndpointResolver) WebSocketURL(ctx context.Context) string {
	if r.lookup != nil && !r.cfg.EventsWSFromEnv() {
		endpoint, err := r.lookup.FindActiveByMethod(ctx, models.MethodWS)
		if err == nil && endpoint != nil && endpoint.URL != "" {
			return endpoint.URL
		}
		if err != nil && !errors.Is(err, ErrEndpointNotFound) {
			r.log.Warn("WebSocket endpoint lookup failed, using fallback", zap.Error(err))
		}
	}
	return r.cfg.EventsWSURL()
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
