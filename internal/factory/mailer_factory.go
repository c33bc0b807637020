package factory

import (
	"go.uber.org/zap"

	"github.com/oakline/formgate/internal/adapters/mailer"
	"github.com/oakline/formgate/internal/config"
	"github.com/oakline/formgate/internal/core"
)

// MailerFactory creates the outbound mailer based on configuration
type MailerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewMailerFactory creates a new mailer factory
func NewMailerFactory(cfg *config.Config, logger *zap.Logger) *MailerFactory {
	return &MailerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMailer creates the configured mailer. When outbound mail is
// disabled the service still accepts submissions and logs them.
func (f *MailerFactory) CreateMailer() core.Mailer {
	mailCfg := f.cfg.GetMail()
	if !mailCfg.Enabled {
		f.logger.Info("Outbound mail is disabled")
		return mailer.NewNopMailer(f.logger)
	}
	return mailer.NewSMTPMailer(mailCfg, f.logger)
}
