package ratelimit

import (
	"context"
	"time"
)

// Config holds the fixed-window parameters for a check
type Config struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultConfig returns the production default of 5 requests per minute
func DefaultConfig() Config {
	return Config{
		MaxRequests: 5,
		Window:      60 * time.Second,
	}
}

// Result describes the outcome of a rate limit check
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Store counts requests per client identifier within fixed windows. A check
// both reads and consumes quota: each allowed call increments the window
// counter. Implementations must make the increment-and-compare atomic per
// identifier so concurrent bursts cannot race past the limit.
//
// The memory store is only correct for a single process instance; deployments
// that scale horizontally need the MySQL store (or another shared backend) so
// all instances count against the same windows.
type Store interface {
	// Check consumes one request from the identifier's window and reports
	// whether it was within quota
	Check(ctx context.Context, identifier string, cfg Config) (*Result, error)

	// Cleanup removes entries whose window has already expired
	Cleanup(ctx context.Context) error

	// Stop terminates the background cleanup task
	Stop()
}
