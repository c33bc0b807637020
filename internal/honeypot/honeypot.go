package honeypot

import (
	"go.uber.org/zap"
)

// Checker inspects the hidden trap field included in every public form.
// The field is moved off-screen with positioning rather than display:none,
// so automated fillers that skip hidden inputs still populate it. A human
// never sees the field and therefore never fills it.
type Checker struct {
	logger *zap.Logger
}

// NewChecker creates a new honeypot checker
func NewChecker(logger *zap.Logger) *Checker {
	return &Checker{logger: logger}
}

// Triggered reports whether the trap field was filled. Any non-empty value,
// including pure whitespace, counts as a trigger.
func (c *Checker) Triggered(value string) bool {
	if value == "" {
		return false
	}

	if c.logger != nil {
		c.logger.Info("Honeypot field was filled",
			zap.Int("value_length", len(value)),
			zap.String("action", "honeypot_trigger"))
	}
	return true
}
