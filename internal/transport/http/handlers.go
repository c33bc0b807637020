package transporthttp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oakline/formgate/internal/core"
)

// Form action names the risk tokens must be minted for. Tokens issued for
// one form cannot be replayed against another.
const (
	ActionContact        = "contact_form"
	ActionConstruction   = "construction_form"
	ActionRealEstate     = "real_estate_form"
	ActionInteriorDesign = "interior_design_form"
)

const mailTimeout = 30 * time.Second

// submissionRequest is the JSON body shared by the intake forms. Field
// presence varies per form; the handlers decide which fields feed the
// content checks.
type submissionRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	Message string `json:"message"`

	// Website is the honeypot. It is rendered off-screen and must stay
	// empty; the JSON name is deliberately innocuous.
	Website string `json:"website"`

	RecaptchaToken string `json:"recaptchaToken"`
}

type submissionResponse struct {
	OK    bool   `json:"ok"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

// Handlers holds the form submission endpoints
type Handlers struct {
	guard        *core.SpamGuardService
	mailer       core.Mailer
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewHandlers creates the form submission handlers
func NewHandlers(guard *core.SpamGuardService, mailer core.Mailer, maxBodyBytes int64, logger *zap.Logger) *Handlers {
	return &Handlers{
		guard:        guard,
		mailer:       mailer,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// Contact handles the general contact form. This is the only form that
// surfaces field-level content errors: they are user-correctable and the
// form has the room to show them.
func (h *Handlers) Contact(w http.ResponseWriter, r *http.Request) {
	h.handleForm(w, r, "contact", ActionContact, &core.ContentPolicy{
		CheckName:          true,
		CheckMessage:       true,
		SurfaceFieldErrors: true,
	})
}

// Construction handles the construction intake form
func (h *Handlers) Construction(w http.ResponseWriter, r *http.Request) {
	h.handleForm(w, r, "construction", ActionConstruction, &core.ContentPolicy{
		CheckName: true,
		CheckCity: true,
	})
}

// RealEstate handles the real estate intake form
func (h *Handlers) RealEstate(w http.ResponseWriter, r *http.Request) {
	h.handleForm(w, r, "real estate", ActionRealEstate, &core.ContentPolicy{
		CheckName: true,
		CheckCity: true,
	})
}

// InteriorDesign handles the interior design intake form
func (h *Handlers) InteriorDesign(w http.ResponseWriter, r *http.Request) {
	h.handleForm(w, r, "interior design", ActionInteriorDesign, &core.ContentPolicy{
		CheckName:    true,
		CheckMessage: true,
	})
}

// Health reports liveness
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handlers) handleForm(w http.ResponseWriter, r *http.Request, form, action string, policy *core.ContentPolicy) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, submissionResponse{OK: false, Error: "invalid request body"})
		return
	}

	sub := &core.Submission{
		ClientID:      ClientIdentifier(r),
		Name:          req.Name,
		Message:       req.Message,
		City:          req.City,
		RiskToken:     req.RecaptchaToken,
		RiskAction:    action,
		HoneypotValue: req.Website,
	}

	result, err := h.guard.Check(r.Context(), sub, core.CheckOptions{Content: policy})
	if err != nil {
		h.logger.Error("Spam check failed",
			zap.Error(err),
			zap.String("form", form))
		writeJSON(w, http.StatusInternalServerError, submissionResponse{OK: false, Error: "internal server error"})
		return
	}

	if !result.Passed {
		status := http.StatusTooManyRequests
		if result.Error != core.GenericRejection {
			// A surfaced content reason is the one rejection the
			// submitter can act on.
			if result.Content != nil && !result.Content.Valid {
				status = http.StatusBadRequest
			}
		}
		writeJSON(w, status, submissionResponse{OK: false, Error: result.Error})
		return
	}

	id := uuid.NewString()

	// Email delivery happens after the verdict and off the request path;
	// a provider hiccup must not fail an already accepted submission.
	notification := &core.Notification{
		Form:         form,
		SubmissionID: id,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Message:      req.Message,
		City:         req.City,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := h.mailer.SendSubmission(ctx, notification); err != nil {
			h.logger.Error("Failed to send submission emails",
				zap.Error(err),
				zap.String("form", form),
				zap.String("submission_id", id))
		}
	}()

	h.logger.Info("Submission accepted",
		zap.String("form", form),
		zap.String("submission_id", id),
		zap.String("client_id", sub.ClientID))
	writeJSON(w, http.StatusOK, submissionResponse{OK: true, ID: id})
}

func writeJSON(w http.ResponseWriter, status int, body submissionResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
