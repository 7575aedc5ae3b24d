package database

import (
	"fmt"
	"sync/atomic"
	"time"

	"safecity-dashboard/be/config"
	"safecity-dashboard/be/logger"
	"safecity-dashboard/be/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PoolOptions bounds the connection pool shared by all request handlers.
type PoolOptions struct {
	MaxOpenConns int
	IdleTimeout  time.Duration
}

func Initialize(cfg config.DatabaseConfig, upstream config.UpstreamConfig) (*gorm.DB, error) {
	db, err := Open(UsePostgresDialector(cfg), PoolOptions{
		MaxOpenConns: cfg.MaxOpenConns,
		IdleTimeout:  cfg.IdleTimeout,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := SeedDefaultEndpoints(db, upstream); err != nil {
		logger.GetLoggerWith(logger.NameDatabase).Warn("Failed to seed default endpoints", zap.Error(err))
	}

	logger.GetLoggerWith(logger.NameDatabase).Info("Database initialized successfully",
		zap.String("host", cfg.Host), zap.String("name", cfg.DBName))
	return db, nil
}

func Open(dialector gorm.Dialector, opts PoolOptions) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.IdleTimeout > 0 {
		sqlDB.SetConnMaxIdleTime(opts.IdleTimeout)
	}

	return db, nil
}

// Migrate creates the endpoints and zones tables if they do not exist.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Endpoint{},
		&models.Zone{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func UsePostgresDialector(cfg config.DatabaseConfig) gorm.Dialector {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s connect_timeout=%d",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode, connectTimeoutSeconds(cfg.ConnectTimeout),
	)
	return postgres.Open(dsn)
}

var memoryDBCounter atomic.Uint64

// UseMemorySqliteDialector returns a private in-memory database per call.
func UseMemorySqliteDialector() gorm.Dialector {
	return sqlite.Open(fmt.Sprintf("file:safecity_%d?mode=memory&cache=shared", memoryDBCounter.Add(1)))
}

func connectTimeoutSeconds(d time.Duration) int {
	secs := int(d / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
