package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/jordan-wright/email"
	"go.uber.org/zap"

	"github.com/oakline/formgate/internal/config"
	"github.com/oakline/formgate/internal/core"
)

// SMTPMailer sends the post-acceptance notification emails over SMTP
type SMTPMailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg config.MailConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// SendSubmission sends the internal notification and, when the submitter
// left an address, a confirmation. The submission was already accepted by
// the time this runs; a send failure is reported to the caller for logging
// but must not turn into a client-facing rejection.
func (m *SMTPMailer) SendSubmission(ctx context.Context, n *core.Notification) error {
	internal := email.NewEmail()
	internal.From = m.cfg.From
	internal.To = []string{m.cfg.To}
	if n.Email != "" {
		internal.ReplyTo = []string{fmt.Sprintf("%s <%s>", n.Name, n.Email)}
	}
	internal.Subject = strings.TrimSpace(fmt.Sprintf("%s New %s submission", m.cfg.SubjectPrefix, n.Form))
	internal.Text = []byte(internalBody(n))

	if err := m.send(internal); err != nil {
		return fmt.Errorf("failed to send internal notification: %w", err)
	}

	if n.Email == "" {
		return nil
	}

	confirmation := email.NewEmail()
	confirmation.From = m.cfg.From
	confirmation.To = []string{n.Email}
	confirmation.Subject = strings.TrimSpace(fmt.Sprintf("%s We received your request", m.cfg.SubjectPrefix))
	confirmation.Text = []byte(confirmationBody(n))

	if err := m.send(confirmation); err != nil {
		return fmt.Errorf("failed to send confirmation: %w", err)
	}

	m.logger.Info("Submission emails sent",
		zap.String("form", n.Form),
		zap.String("submission_id", n.SubmissionID))
	return nil
}

func (m *SMTPMailer) send(e *email.Email) error {
	addr := net.JoinHostPort(m.cfg.SMTPHost, strconv.Itoa(m.cfg.SMTPPort))
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}
	return e.Send(addr, auth)
}

func internalBody(n *core.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Form: %s\nSubmission: %s\n", n.Form, n.SubmissionID)
	fmt.Fprintf(&b, "Name: %s\n", n.Name)
	if n.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", n.Email)
	}
	if n.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", n.Phone)
	}
	if n.City != "" {
		fmt.Fprintf(&b, "City: %s\n", n.City)
	}
	if n.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", n.Message)
	}
	return b.String()
}

func confirmationBody(n *core.Notification) string {
	return fmt.Sprintf(
		"Hi %s,\n\nThanks for reaching out. We received your %s request and will get back to you within one business day.\n\nIf anything is urgent, call the number listed on our website.\n",
		n.Name, n.Form)
}

// NopMailer discards notifications. Used in development and in tests, and
// whenever outbound mail is disabled in configuration.
type NopMailer struct {
	logger *zap.Logger
}

// NewNopMailer creates a mailer that only logs
func NewNopMailer(logger *zap.Logger) *NopMailer {
	return &NopMailer{logger: logger}
}

// SendSubmission logs the notification instead of sending it
func (m *NopMailer) SendSubmission(ctx context.Context, n *core.Notification) error {
	m.logger.Info("Outbound mail disabled, discarding notification",
		zap.String("form", n.Form),
		zap.String("submission_id", n.SubmissionID))
	return nil
}
