package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_NAME", "")
	t.Setenv("API_BASE", "")
	t.Setenv("EVENTS_WS_URL", "")
	t.Setenv("FEED_MAX_EVENTS", "")

	cfg := Load()

	assert.Equal(t, "safecity", cfg.Database.DBName)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30*time.Second, cfg.Database.IdleTimeout)
	assert.Equal(t, "http://192.168.18.70:5000", cfg.Upstream.APIBase)
	assert.Equal(t, 500, cfg.Feed.MaxEvents)
	assert.Equal(t, 15*time.Second, cfg.Feed.OfflineBeforePoll)
	assert.True(t, cfg.Upstream.MockFallback)
	assert.False(t, cfg.JWT.AuthEnabled())
	assert.False(t, cfg.Upstream.APIBaseFromEnv)
	assert.False(t, cfg.Upstream.EventsWSFromEnv())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE", "https://events.example.org/")
	t.Setenv("FEED_POLL_INTERVAL", "2s")
	t.Setenv("MOCK_FALLBACK", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, http://127.0.0.1:3000,")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "https://events.example.org", cfg.Upstream.APIBase)
	assert.True(t, cfg.Upstream.APIBaseFromEnv)
	assert.True(t, cfg.Upstream.EventsWSFromEnv())
	assert.Equal(t, 2*time.Second, cfg.Feed.PollInterval)
	assert.False(t, cfg.Upstream.MockFallback)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
}

func TestEventsWSURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  UpstreamConfig
		want string
	}{
		{"derived from http", UpstreamConfig{APIBase: "http://10.0.0.1:5000"}, "ws://10.0.0.1:5000/6/events/ws"},
		{"derived from https", UpstreamConfig{APIBase: "https://api.local"}, "wss://api.local/6/events/ws"},
		{"explicit wins", UpstreamConfig{APIBase: "http://x", EventsWS: "ws://feed/ws"}, "ws://feed/ws"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.EventsWSURL())
		})
	}
}
