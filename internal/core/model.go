package core

import (
	"github.com/oakline/formgate/internal/content"
	"github.com/oakline/formgate/internal/ratelimit"
)

// GenericRejection is the only failure detail ever shown to a client for
// honeypot, rate limit and risk rejections. Being specific would tell a
// probing bot which check it tripped.
const GenericRejection = "Unable to process request"

// Submission carries the request-scoped data the spam checks need. It is
// built per request and discarded after the check completes.
type Submission struct {
	// ClientID is the network identifier derived from proxy headers.
	ClientID string

	Name    string
	Message string
	City    string

	// RiskToken is the client-supplied assessment token, empty when the
	// form was submitted without one.
	RiskToken string
	// RiskAction is the action name the token must have been minted for.
	RiskAction string

	// HoneypotValue is the raw value of the hidden trap field.
	HoneypotValue string
}

// ContentPolicy names the free-text fields an endpoint wants validated and
// how failures are surfaced.
type ContentPolicy struct {
	CheckName    bool
	CheckMessage bool
	CheckCity    bool

	// MinMessageWords overrides the configured minimum when > 0.
	MinMessageWords int

	// SurfaceFieldErrors surfaces the field-level reason to the client.
	// Content failures are user-correctable, so specificity is safe, but
	// some endpoints prefer a uniform generic response.
	SurfaceFieldErrors bool
}

// CheckOptions bundles the per-endpoint knobs for one pipeline run
type CheckOptions struct {
	// Content enables content validation when non-nil.
	Content *ContentPolicy

	// RateLimit overrides the configured window when non-nil.
	RateLimit *ratelimit.Config
}

// HoneypotResult records whether the trap field fired
type HoneypotResult struct {
	Triggered bool
}

// RiskResult is the structured outcome of a risk-score verification
type RiskResult struct {
	Valid  bool
	Score  float64
	Reason string
}

// SpamCheckResult is the pipeline's output. Sub-results are nil for checks
// that were skipped or never reached; when Passed is false, exactly one
// sub-check caused the rejection and Error summarizes it.
type SpamCheckResult struct {
	Passed bool
	// Error is the client-facing summary of the first failure.
	Error     string
	Honeypot  *HoneypotResult
	Content   *content.Result
	RateLimit *ratelimit.Result
	Risk      *RiskResult
}

// Notification is the payload handed to the mailer once a submission has
// passed every check.
type Notification struct {
	Form         string
	SubmissionID string
	Name         string
	Email        string
	Phone        string
	Message      string
	City         string
}
