package ratelimit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the Store interface. Counters
// survive process restarts, which keeps the window honest across deploys of
// a single-instance service.
type SQLiteStore struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	now         func() time.Time
}

// NewSQLiteStore creates a new SQLite rate limit store
func NewSQLiteStore(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS rate_limits (
			identifier TEXT PRIMARY KEY,
			count INTEGER NOT NULL,
			reset_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Create index on reset_at for faster cleanup
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_rate_limits_reset_at ON rate_limits(reset_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	store := &SQLiteStore{
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

// Check consumes one request from the identifier's fixed window. The read
// and the upsert run in one transaction; SQLite serializes writers, which
// gives the per-key atomicity the window counter needs.
func (s *SQLiteStore) Check(ctx context.Context, identifier string, cfg Config) (*Result, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now()

	var count int
	var resetAtStr string
	err = tx.QueryRowContext(ctx, `
		SELECT count, reset_at FROM rate_limits WHERE identifier = ?
	`, identifier).Scan(&count, &resetAtStr)

	fresh := false
	var resetAt time.Time
	switch {
	case err == sql.ErrNoRows:
		fresh = true
	case err != nil:
		return nil, fmt.Errorf("failed to query rate limit entry: %w", err)
	default:
		resetAt, err = time.Parse(time.RFC3339, resetAtStr)
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
		return &Result{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rate_limits (identifier, count, reset_at)
		VALUES (?, ?, ?)
		ON CONFLICT(identifier) DO UPDATE SET count = excluded.count, reset_at = excluded.reset_at
	`, identifier, count, resetAt.Format(time.RFC3339))
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
func (s *SQLiteStore) Cleanup(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM rate_limits WHERE reset_at <= ?
	`, s.now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to clean up rate limit entries: %w", err)
	}

	if expired, err := result.RowsAffected(); err == nil {
		s.logger.Debug("Cleaned up expired rate limit entries", zap.Int64("expired_count", expired))
	}
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (s *SQLiteStore) startCleanupTask() {
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
func (s *SQLiteStore) Stop() {
	close(s.stopCh)
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
