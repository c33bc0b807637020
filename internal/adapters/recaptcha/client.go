package recaptcha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/oakline/formgate/internal/config"
	"github.com/oakline/formgate/internal/core"
	"go.uber.org/zap"
)

// Client is an implementation of the RiskVerifier interface backed by a
// reCAPTCHA-Enterprise-style assessment API.
type Client struct {
	cfg        config.RiskConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// assessmentRequest is the wire format of an assessment call
type assessmentRequest struct {
	Event assessmentEvent `json:"event"`
}

type assessmentEvent struct {
	Token          string `json:"token"`
	ExpectedAction string `json:"expectedAction"`
	SiteKey        string `json:"siteKey"`
}

// assessmentResponse is the structured assessment returned by the service
type assessmentResponse struct {
	TokenProperties struct {
		Valid         bool   `json:"valid"`
		Action        string `json:"action"`
		InvalidReason string `json:"invalidReason"`
	} `json:"tokenProperties"`
	RiskAnalysis struct {
		Score   float64  `json:"score"`
		Reasons []string `json:"reasons"`
	} `json:"riskAnalysis"`
}

// NewClient creates a new risk-assessment client
func NewClient(cfg config.RiskConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// configured reports whether every credential the assessment API needs is set
func (c *Client) configured() bool {
	return c.cfg.APIKey != "" && c.cfg.ProjectID != "" && c.cfg.SiteKey != ""
}

// endpoint returns the assessment URL, honoring the configured override
func (c *Client) endpoint() string {
	if c.cfg.Endpoint != "" {
		return c.cfg.Endpoint
	}
	return fmt.Sprintf(
		"https://recaptchaenterprise.googleapis.com/v1/projects/%s/assessments?key=%s",
		c.cfg.ProjectID, c.cfg.APIKey)
}

// Verify checks the token against the expected action. All failure modes,
// including upstream outages, come back as a structured result: this
// boundary never returns an error.
//
// When credentials are missing and FailOpen is set, verification passes
// with a full score. The site keeps accepting legitimate submissions when
// the integration is misconfigured, at the cost of silently losing bot
// protection; deployments that prefer strictness set risk.fail_open false.
func (c *Client) Verify(ctx context.Context, token, expectedAction string) *core.RiskResult {
	if !c.configured() {
		if c.cfg.FailOpen {
			c.logger.Warn("Risk assessment credentials not configured, allowing submission",
				zap.String("expected_action", expectedAction))
			return &core.RiskResult{Valid: true, Score: 1.0, Reason: "risk verification not configured"}
		}
		return &core.RiskResult{Valid: false, Score: 0, Reason: "risk verification unavailable"}
	}

	if token == "" {
		return &core.RiskResult{Valid: false, Score: 0, Reason: "no token provided"}
	}

	body, err := json.Marshal(assessmentRequest{
		Event: assessmentEvent{
			Token:          token,
			ExpectedAction: expectedAction,
			SiteKey:        c.cfg.SiteKey,
		},
	})
	if err != nil {
		c.logger.Error("Failed to encode assessment request", zap.Error(err))
		return &core.RiskResult{Valid: false, Score: 0, Reason: "assessment request failed"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		c.logger.Error("Failed to build assessment request", zap.Error(err))
		return &core.RiskResult{Valid: false, Score: 0, Reason: "assessment request failed"}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Covers timeouts as well: an unresponsive service is a failed
		// verification, not a hung request handler.
		c.logger.Error("Risk assessment request failed", zap.Error(err))
		return &core.RiskResult{Valid: false, Score: 0, Reason: "risk service unreachable"}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Risk assessment returned non-success status",
			zap.Int("status", resp.StatusCode))
		return &core.RiskResult{
			Valid:  false,
			Score:  0,
			Reason: fmt.Sprintf("risk service returned status %d", resp.StatusCode),
		}
	}

	var assessment assessmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&assessment); err != nil {
		c.logger.Error("Failed to parse risk assessment response", zap.Error(err))
		return &core.RiskResult{Valid: false, Score: 0, Reason: "invalid assessment response"}
	}

	if !assessment.TokenProperties.Valid {
		return &core.RiskResult{
			Valid:  false,
			Score:  0,
			Reason: fmt.Sprintf("invalid token: %s", assessment.TokenProperties.InvalidReason),
		}
	}

	// A valid token minted for a different form must not be replayable
	// against this one.
	if assessment.TokenProperties.Action != expectedAction {
		return &core.RiskResult{Valid: false, Score: 0, Reason: "action mismatch"}
	}

	score := assessment.RiskAnalysis.Score
	if score < c.cfg.Threshold {
		c.logger.Info("Risk score below threshold",
			zap.Float64("score", score),
			zap.Float64("threshold", c.cfg.Threshold),
			zap.Strings("reasons", assessment.RiskAnalysis.Reasons))
		return &core.RiskResult{
			Valid:  false,
			Score:  score,
			Reason: fmt.Sprintf("risk score %.2f below threshold", score),
		}
	}

	return &core.RiskResult{Valid: true, Score: score}
}
