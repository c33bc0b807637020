package core

import (
	"context"
)

// RiskVerifier defines the interface to the external risk-assessment service
type RiskVerifier interface {
	// Verify checks the token against the expected action. It never fails
	// with an error: upstream problems come back as an invalid RiskResult
	// with the reason recorded.
	Verify(ctx context.Context, token, expectedAction string) *RiskResult
}

// Mailer defines the interface for the outbound notification emails sent
// after a submission passes the spam checks
type Mailer interface {
	// SendSubmission sends the client confirmation and the internal
	// notification for one accepted submission
	SendSubmission(ctx context.Context, notification *Notification) error
}
