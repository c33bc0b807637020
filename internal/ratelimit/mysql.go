package ratelimit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

const mysqlTimeLayout = "2006-01-02 15:04:05"

// MySQLStore is a MySQL implementation of the Store interface. It is the
// backend for horizontally scaled deployments: every instance counts against
// the same shared windows instead of keeping a private map.
type MySQLStore struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	now         func() time.Time
}

// NewMySQLStore creates a new MySQL rate limit store
func NewMySQLStore(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS rate_limits (
			identifier VARCHAR(64) PRIMARY KEY,
			count INT NOT NULL,
			reset_at DATETIME NOT NULL,
			INDEX idx_rate_limits_reset_at (reset_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	store := &MySQLStore{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}

	// Start background cleanup
	go store.startCleanupTask()

	return store, nil
}

// Check consumes one request from the identifier's fixed window. The row is
// locked with SELECT ... FOR UPDATE so concurrent instances serialize on the
// same identifier without blocking unrelated traffic.
func (s *MySQLStore) Check(ctx context.Context, identifier string, cfg Config) (*Result, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now().UTC().Truncate(time.Second)

	var count int
	var resetAtStr string
	err = tx.QueryRowContext(ctx, `
		SELECT count, reset_at FROM rate_limits WHERE identifier = ? FOR UPDATE
	`, identifier).Scan(&count, &resetAtStr)

	fresh := false
	var resetAt time.Time
	switch {
	case err == sql.ErrNoRows:
		fresh = true
	case err != nil:
		return nil, fmt.Errorf("failed to query rate limit entry: %w", err)
	default:
		resetAt, err = time.Parse(mysqlTimeLayout, resetAtStr)
		if err != nil {
			s.logger.Error("Failed to parse reset_at timestamp", zap.Error(err))
			fresh = true
		} else if !now.Before(resetAt) {
			fresh = true
		}
	}

	if fresh {
		resetAt = now.Add(cfg.Window)
		count = 1
	} else if count < cfg.MaxRequests {
		count++
	} else {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit rate limit check: %w", err)
		}
		return &Result{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rate_limits (identifier, count, reset_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE count = VALUES(count), reset_at = VALUES(reset_at)
	`, identifier, count, resetAt.Format(mysqlTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert rate limit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rate limit entry: %w", err)
	}

	return &Result{
		Allowed:   true,
		Remaining: cfg.MaxRequests - count,
		ResetAt:   resetAt,
	}, nil
}

// Cleanup removes entries whose window has already expired
func (s *MySQLStore) Cleanup(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM rate_limits WHERE reset_at <= ?
	`, s.now().UTC().Format(mysqlTimeLayout))
	if err != nil {
		return fmt.Errorf("failed to clean up rate limit entries: %w", err)
	}

	if expired, err := result.RowsAffected(); err == nil {
		s.logger.Debug("Cleaned up expired rate limit entries", zap.Int64("expired_count", expired))
	}
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (s *MySQLStore) startCleanupTask() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Cleanup(context.Background()); err != nil {
				s.logger.Error("Failed to clean up rate limit store", zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database
func (s *MySQLStore) Stop() {
	close(s.stopCh)
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
