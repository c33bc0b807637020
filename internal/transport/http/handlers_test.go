package transporthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oakline/formgate/internal/config"
	"github.com/oakline/formgate/internal/content"
	"github.com/oakline/formgate/internal/core"
	"github.com/oakline/formgate/internal/honeypot"
	"github.com/oakline/formgate/internal/ratelimit"
)

type stubVerifier struct {
	calls  int
	result *core.RiskResult
}

func (s *stubVerifier) Verify(ctx context.Context, token, expectedAction string) *core.RiskResult {
	s.calls++
	if s.result != nil {
		return s.result
	}
	return &core.RiskResult{Valid: true, Score: 0.9}
}

type recordingMailer struct {
	sent chan *core.Notification
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{sent: make(chan *core.Notification, 8)}
}

func (m *recordingMailer) SendSubmission(ctx context.Context, n *core.Notification) error {
	m.sent <- n
	return nil
}

func (m *recordingMailer) waitForNotification(t *testing.T) *core.Notification {
	t.Helper()
	select {
	case n := <-m.sent:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

func newTestServer(t *testing.T, rlCfg ratelimit.Config, verifier core.RiskVerifier) (*Server, *recordingMailer) {
	t.Helper()

	store := ratelimit.NewMemoryStore(zap.NewNop(), time.Hour)
	t.Cleanup(store.Stop)

	guard := core.NewSpamGuardService(
		honeypot.NewChecker(zap.NewNop()),
		content.NewValidator(content.DefaultThresholds()),
		store,
		rlCfg,
		verifier,
		zap.NewNop(),
	)

	mail := newRecordingMailer()
	handlers := NewHandlers(guard, mail, 65536, zap.NewNop())
	server := NewServer(config.ServerConfig{ListenAddress: ":0"}, handlers, zap.NewNop())
	return server, mail
}

func postForm(t *testing.T, server *Server, path, clientIP string, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if clientIP != "" {
		req.Header.Set("X-Forwarded-For", clientIP)
	}

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) submissionResponse {
	t.Helper()
	var resp submissionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestContactAccepted(t *testing.T) {
	verifier := &stubVerifier{}
	server, mail := newTestServer(t, ratelimit.DefaultConfig(), verifier)

	rec := postForm(t, server, "/api/contact", "203.0.113.7", map[string]string{
		"name":           "John Smith",
		"email":          "john@example.com",
		"message":        "looking for a quote on a kitchen remodel",
		"recaptchaToken": "token-abc",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.OK)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 1, verifier.calls)

	n := mail.waitForNotification(t)
	assert.Equal(t, "contact", n.Form)
	assert.Equal(t, resp.ID, n.SubmissionID)
	assert.Equal(t, "john@example.com", n.Email)
}

func TestContactHoneypotRejectedGenerically(t *testing.T) {
	verifier := &stubVerifier{}
	server, mail := newTestServer(t, ratelimit.DefaultConfig(), verifier)

	rec := postForm(t, server, "/api/contact", "203.0.113.7", map[string]string{
		"name":           "John Smith",
		"message":        "looking for a quote on a kitchen remodel",
		"website":        "https://definitely-a-bot.example",
		"recaptchaToken": "token-abc",
	})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.OK)
	assert.Equal(t, core.GenericRejection, resp.Error)

	// No risk service call, no email.
	assert.Equal(t, 0, verifier.calls)
	assert.Empty(t, mail.sent)
}

func TestContactSurfacesContentErrors(t *testing.T) {
	server, _ := newTestServer(t, ratelimit.DefaultConfig(), &stubVerifier{})

	rec := postForm(t, server, "/api/contact", "203.0.113.7", map[string]string{
		"name":    "John",
		"message": "looking for a quote on a kitchen remodel",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "first and last name")
}

func TestConstructionGeneralizesContentErrors(t *testing.T) {
	server, _ := newTestServer(t, ratelimit.DefaultConfig(), &stubVerifier{})

	rec := postForm(t, server, "/api/construction", "203.0.113.7", map[string]string{
		"name": "John Smith",
		"city": "Xkjfq",
	})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, core.GenericRejection, resp.Error)
}

func TestRateLimitRejection(t *testing.T) {
	server, _ := newTestServer(t, ratelimit.Config{MaxRequests: 1, Window: time.Minute}, &stubVerifier{})

	body := map[string]string{
		"name":    "John Smith",
		"message": "looking for a quote on a kitchen remodel",
	}

	first := postForm(t, server, "/api/contact", "203.0.113.9", body)
	assert.Equal(t, http.StatusOK, first.Code)

	second := postForm(t, server, "/api/contact", "203.0.113.9", body)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// A different client is unaffected.
	third := postForm(t, server, "/api/contact", "198.51.100.4", body)
	assert.Equal(t, http.StatusOK, third.Code)
}

func TestRiskFailureRejectedGenerically(t *testing.T) {
	verifier := &stubVerifier{result: &core.RiskResult{Valid: false, Score: 0.1, Reason: "risk score 0.10 below threshold"}}
	server, _ := newTestServer(t, ratelimit.DefaultConfig(), verifier)

	rec := postForm(t, server, "/api/interior-design", "203.0.113.7", map[string]string{
		"name":           "John Smith",
		"message":        "we would like help furnishing our new living room",
		"recaptchaToken": "token-abc",
	})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, core.GenericRejection, resp.Error)
}

func TestMalformedBody(t *testing.T) {
	server, _ := newTestServer(t, ratelimit.DefaultConfig(), &stubVerifier{})

	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t, ratelimit.DefaultConfig(), &stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
