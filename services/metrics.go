package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safecity_upstream_requests_total",
		Help: "Upstream requests by target and outcome (success, error, cache_hit).",
	}, []string{"target", "outcome"})

	MockFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safecity_mock_fallbacks_total",
		Help: "Responses served from mock data after an upstream failure.",
	}, []string{"target"})

	FeedState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "safecity_feed_state",
		Help: "Live event feed state: 0 connecting, 1 live, 2 offline.",
	})

	FeedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safecity_feed_events_total",
		Help: "New events merged into the live feed buffer.",
	})

	LiveClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "safecity_live_clients",
		Help: "Browser clients connected to the live event socket.",
	})
)
