package core

import (
	"context"
	"fmt"

	"github.com/oakline/formgate/internal/content"
	"github.com/oakline/formgate/internal/honeypot"
	"github.com/oakline/formgate/internal/ratelimit"
	"go.uber.org/zap"
)

// SpamGuardService runs the layered spam checks over a form submission.
// Checks execute in a fixed order, cheapest and most certain first, and the
// first failure short-circuits the rest; the only network call (risk score
// verification) therefore runs last.
type SpamGuardService struct {
	honeypot     *honeypot.Checker
	validator    *content.Validator
	rateLimits   ratelimit.Store
	rateLimitCfg ratelimit.Config
	riskVerifier RiskVerifier
	logger       *zap.Logger
}

// NewSpamGuardService creates a new spam guard service
func NewSpamGuardService(
	honeypotChecker *honeypot.Checker,
	validator *content.Validator,
	rateLimits ratelimit.Store,
	rateLimitCfg ratelimit.Config,
	riskVerifier RiskVerifier,
	logger *zap.Logger,
) *SpamGuardService {
	return &SpamGuardService{
		honeypot:     honeypotChecker,
		validator:    validator,
		rateLimits:   rateLimits,
		rateLimitCfg: rateLimitCfg,
		riskVerifier: riskVerifier,
		logger:       logger,
	}
}

// Check evaluates a submission against every applicable check. A non-nil
// error means the pipeline itself failed (a store I/O problem, not a spam
// verdict) and the caller should treat it as an internal error.
func (s *SpamGuardService) Check(ctx context.Context, sub *Submission, opts CheckOptions) (*SpamCheckResult, error) {
	result := &SpamCheckResult{}

	// 1. Honeypot. No client-facing detail: the message must not reveal
	// that a trap field exists.
	result.Honeypot = &HoneypotResult{Triggered: s.honeypot.Triggered(sub.HoneypotValue)}
	if result.Honeypot.Triggered {
		s.logger.Info("Submission rejected",
			zap.String("check", "honeypot"),
			zap.String("client_id", sub.ClientID))
		result.Error = GenericRejection
		return result, nil
	}

	// 2. Content validation, only for the fields the endpoint asked for.
	if opts.Content != nil {
		contentResult := s.validator.Validate(content.Input{
			Name:            sub.Name,
			CheckName:       opts.Content.CheckName,
			Message:         sub.Message,
			CheckMessage:    opts.Content.CheckMessage,
			MinMessageWords: opts.Content.MinMessageWords,
			City:            sub.City,
			CheckCity:       opts.Content.CheckCity,
		})
		result.Content = &contentResult
		if !contentResult.Valid {
			field, reason := firstContentError(contentResult.Errors)
			s.logger.Info("Submission rejected",
				zap.String("check", "content"),
				zap.String("field", field),
				zap.String("reason", reason),
				zap.String("client_id", sub.ClientID))
			if opts.Content.SurfaceFieldErrors {
				result.Error = reason
			} else {
				result.Error = GenericRejection
			}
			return result, nil
		}
	}

	// 3. Rate limit. Store errors are infrastructure failures, not verdicts.
	cfg := s.rateLimitCfg
	if opts.RateLimit != nil {
		cfg = *opts.RateLimit
	}
	rateResult, err := s.rateLimits.Check(ctx, sub.ClientID, cfg)
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	result.RateLimit = rateResult
	if !rateResult.Allowed {
		s.logger.Info("Submission rejected",
			zap.String("check", "ratelimit"),
			zap.String("client_id", sub.ClientID),
			zap.Time("reset_at", rateResult.ResetAt))
		result.Error = "rate limit exceeded, please try again later"
		return result, nil
	}

	// 4. Risk score, only when the form sent a token.
	if sub.RiskToken != "" {
		riskResult := s.riskVerifier.Verify(ctx, sub.RiskToken, sub.RiskAction)
		result.Risk = riskResult
		if !riskResult.Valid {
			// The numeric score and reason stay in the logs for
			// threshold tuning; the client sees nothing specific.
			s.logger.Warn("Submission rejected",
				zap.String("check", "risk"),
				zap.String("reason", riskResult.Reason),
				zap.Float64("score", riskResult.Score),
				zap.String("client_id", sub.ClientID))
			result.Error = GenericRejection
			return result, nil
		}
	}

	result.Passed = true
	return result, nil
}

// firstContentError picks the failure to surface in a stable field order
func firstContentError(errors map[string]string) (string, string) {
	for _, field := range []string{content.FieldName, content.FieldMessage, content.FieldCity} {
		if reason, ok := errors[field]; ok {
			return field, reason
		}
	}
	for field, reason := range errors {
		return field, reason
	}
	return "", ""
}
