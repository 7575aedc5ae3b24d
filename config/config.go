package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upstream UpstreamConfig
	Feed     FeedConfig
	JWT      JWTConfig
	Limits   LimitsConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	StaticDir      string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxOpenConns   int
	IdleTimeout    time.Duration
	ConnectTimeout time.Duration
}

// UpstreamConfig holds the addresses of the camera/event/stream services.
// Rows in the endpoints table take precedence at request time unless the
// address was set explicitly in the environment.
type UpstreamConfig struct {
	APIBase      string
	StreamsBase  string
	DahuaBase    string
	EventsWS     string
	Timeout      time.Duration
	CacheTTL     time.Duration
	MockFallback bool

	APIBaseFromEnv     bool
	StreamsBaseFromEnv bool
	DahuaBaseFromEnv   bool
}

type FeedConfig struct {
	Enabled           bool
	MaxEvents         int
	PollFallback      bool
	OfflineBeforePoll time.Duration
	PollInterval      time.Duration
	BackoffBase       time.Duration
	BackoffMax        time.Duration
	BackoffJitter     time.Duration
}

type JWTConfig struct {
	Secret            string
	Expiry            string
	AdminUsername     string
	AdminPasswordHash string
}

type LimitsConfig struct {
	ImageProxyRate  float64
	ImageProxyBurst int
}

type LogConfig struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			StaticDir:      getEnv("STATIC_DIR", "./web"),
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "1234"),
			DBName:         getEnv("DB_NAME", "safecity"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getEnvInt("DB_MAX_OPEN_CONNS", 20),
			IdleTimeout:    getEnvDuration("DB_IDLE_TIMEOUT", 30*time.Second),
			ConnectTimeout: getEnvDuration("DB_CONNECT_TIMEOUT", 2*time.Second),
		},
		Upstream: UpstreamConfig{
			APIBase:      strings.TrimRight(getEnv("API_BASE", "http://192.168.18.70:5000"), "/"),
			StreamsBase:  strings.TrimRight(getEnv("STREAMS_BASE", "http://192.168.18.70:8080"), "/"),
			DahuaBase:    strings.TrimRight(getEnv("DAHUA_BASE", "http://192.168.18.38:8081"), "/"),
			EventsWS:     getEnv("EVENTS_WS_URL", ""),
			Timeout:      getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),
			CacheTTL:     getEnvDuration("UPSTREAM_CACHE_TTL", 5*time.Second),
			MockFallback: getEnvBool("MOCK_FALLBACK", true),

			APIBaseFromEnv:     envSet("API_BASE"),
			StreamsBaseFromEnv: envSet("STREAMS_BASE"),
			DahuaBaseFromEnv:   envSet("DAHUA_BASE"),
		},
		Feed: FeedConfig{
			Enabled:           getEnvBool("FEED_ENABLED", true),
			MaxEvents:         getEnvInt("FEED_MAX_EVENTS", 500),
			PollFallback:      getEnvBool("FEED_POLL_FALLBACK", true),
			OfflineBeforePoll: getEnvDuration("FEED_OFFLINE_BEFORE_POLL", 15*time.Second),
			PollInterval:      getEnvDuration("FEED_POLL_INTERVAL", 8*time.Second),
			BackoffBase:       getEnvDuration("FEED_BACKOFF_BASE", time.Second),
			BackoffMax:        getEnvDuration("FEED_BACKOFF_MAX", 30*time.Second),
			BackoffJitter:     getEnvDuration("FEED_BACKOFF_JITTER", time.Second),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			Expiry:            getEnv("JWT_EXPIRY", "24h"),
			AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Limits: LimitsConfig{
			ImageProxyRate:  getEnvFloat("IMAGE_PROXY_RATE", 20),
			ImageProxyBurst: getEnvInt("IMAGE_PROXY_BURST", 40),
		},
		Log: LogConfig{
			Dir:        getEnv("LOG_DIR", "./logs"),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		},
	}
}

// EventsWSURL returns the configured feed socket, or derives it from the
// API base (http -> ws, https -> wss).
func (u UpstreamConfig) EventsWSURL() string {
	if u.EventsWS != "" {
		return u.EventsWS
	}
	base := u.APIBase
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/6/events/ws"
}

// EventsWSFromEnv reports whether the feed socket follows the environment,
// either directly or derived from an explicit API_BASE.
func (u UpstreamConfig) EventsWSFromEnv() bool {
	return u.EventsWS != "" || u.APIBaseFromEnv
}

// AuthEnabled reports whether settings writes require an admin token.
func (j JWTConfig) AuthEnabled() bool {
	return j.AdminPasswordHash != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envSet(key string) bool {
	return os.Getenv(key) != ""
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
