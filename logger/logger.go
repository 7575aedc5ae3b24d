package logger

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"safecity-dashboard/be/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	EnvKeyGoEnv = "GO_ENV"

	NameHTTP     = "http"
	NameDatabase = "database"
	NameUpstream = "upstream"
	NameFeed     = "event_feed"
	NameHub      = "live_hub"
	NameSettings = "settings"
	NameAuth     = "auth"

	FieldCategory = "category"
)

var (
	current atomic.Pointer[zap.Logger]
	once    sync.Once
)

func IsProduction() bool {
	return os.Getenv(EnvKeyGoEnv) == "production"
}

// Init builds the process logger. Only the first call has an effect; later
// calls (and GetLogger before Init) reuse whatever was built first.
func Init(cfg config.LogConfig) {
	once.Do(func() {
		current.Store(build(cfg))
	})
}

func build(cfg config.LogConfig) *zap.Logger {
	dir := cfg.Dir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		log.Fatalf("Error find/create logs directory: %v", err)
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "app.log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(logFile),
		zap.InfoLevel,
	)

	if IsProduction() {
		return zap.New(fileCore, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), zap.DebugLevel)
	return zap.New(zapcore.NewTee(fileCore, consoleCore), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

func getLogger() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	Init(config.LogConfig{Dir: "logs", MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 28})
	return current.Load()
}

func GetLogger() *zap.Logger {
	return getLogger().Named("default")
}

func GetLoggerWith(name string, fields ...zap.Field) *zap.Logger {
	return getLogger().Named(name).With(fields...)
}

func Sync() {
	if l := current.Load(); l != nil {
		_ = l.Sync()
	}
}

// SetTestCaptureLogger routes all subsequent log output as JSON lines into buf.
func SetTestCaptureLogger(buf *bytes.Buffer, level zapcore.Level) {
	once.Do(func() {})

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(buf), level)
	current.Store(zap.New(core))
}

func SetTestLoggerNop() {
	once.Do(func() {})
	current.Store(zap.NewNop())
}
