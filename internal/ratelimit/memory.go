package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type memoryEntry struct {
	count   int
	resetAt time.Time
}

// MemoryStore is an in-memory implementation of the Store interface
type MemoryStore struct {
	entries     map[string]*memoryEntry
	mu          sync.Mutex
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

// NewMemoryStore creates a new in-memory rate limit store
func NewMemoryStore(logger *zap.Logger, cleanupFreq time.Duration) *MemoryStore {
	store := &MemoryStore{
		entries:     make(map[string]*memoryEntry),
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}

	// Start background cleanup
	go store.startCleanupTask()

	return store
}

// Check consumes one request from the identifier's fixed window
func (s *MemoryStore) Check(ctx context.Context, identifier string, cfg Config) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	entry, ok := s.entries[identifier]
	if !ok || !now.Before(entry.resetAt) {
		// First request from this identifier, or a stale window. Expired
		// entries are replaced here lazily; the sweep is only housekeeping.
		entry = &memoryEntry{
			count:   1,
			resetAt: now.Add(cfg.Window),
		}
		s.entries[identifier] = entry
		return &Result{
			Allowed:   true,
			Remaining: cfg.MaxRequests - 1,
			ResetAt:   entry.resetAt,
		}, nil
	}

	if entry.count < cfg.MaxRequests {
		entry.count++
		return &Result{
			Allowed:   true,
			Remaining: cfg.MaxRequests - entry.count,
			ResetAt:   entry.resetAt,
		}, nil
	}

	return &Result{
		Allowed:   false,
		Remaining: 0,
		ResetAt:   entry.resetAt,
	}, nil
}

// Cleanup removes entries whose window has already expired
func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expiredCount := 0

	for identifier, entry := range s.entries {
		if !now.Before(entry.resetAt) {
			delete(s.entries, identifier)
			expiredCount++
		}
	}

	s.logger.Debug("Cleaned up expired rate limit entries", zap.Int("expired_count", expiredCount))
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (s *MemoryStore) startCleanupTask() {
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

// Stop stops the background cleanup task
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}
