package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/oakline/formgate/internal/config"
	"github.com/oakline/formgate/internal/ratelimit"
)

// RateLimitFactory creates rate limit stores based on configuration
type RateLimitFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRateLimitFactory creates a new rate limit factory
func NewRateLimitFactory(cfg *config.Config, logger *zap.Logger) *RateLimitFactory {
	return &RateLimitFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateStore creates a rate limit store based on the configuration
func (f *RateLimitFactory) CreateStore() (ratelimit.Store, error) {
	storeType := f.cfg.GetString("ratelimit.type")
	cleanupFreq, err := f.cfg.GetDuration("ratelimit.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit cleanup frequency: %w", err)
	}

	switch storeType {
	case "memory":
		return ratelimit.NewMemoryStore(f.logger, cleanupFreq), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("ratelimit.sqlite_path")
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return ratelimit.NewSQLiteStore(sqlitePath, f.logger, cleanupFreq)
	case "mysql":
		mysqlDSN := f.cfg.GetString("ratelimit.mysql_dsn")
		return ratelimit.NewMySQLStore(mysqlDSN, f.logger, cleanupFreq)
	default:
		return nil, fmt.Errorf("unsupported rate limit store type: %s", storeType)
	}
}

// GetConfig returns the configured fixed-window parameters
func (f *RateLimitFactory) GetConfig() (ratelimit.Config, error) {
	window, err := f.cfg.GetDuration("ratelimit.window")
	if err != nil {
		return ratelimit.Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}
	return ratelimit.Config{
		MaxRequests: f.cfg.GetInt("ratelimit.max_requests"),
		Window:      window,
	}, nil
}
