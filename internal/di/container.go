package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/oakline/formgate/internal/adapters/recaptcha"
	"github.com/oakline/formgate/internal/config"
	"github.com/oakline/formgate/internal/content"
	"github.com/oakline/formgate/internal/core"
	"github.com/oakline/formgate/internal/factory"
	"github.com/oakline/formgate/internal/honeypot"
	"github.com/oakline/formgate/internal/logging"
	"github.com/oakline/formgate/internal/ratelimit"
	transporthttp "github.com/oakline/formgate/internal/transport/http"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewRateLimitFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewMailerFactory); err != nil {
		return nil, err
	}

	// Register rate limit store and window config
	if err := container.Provide(func(f *factory.RateLimitFactory) (ratelimit.Store, error) {
		return f.CreateStore()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.RateLimitFactory) (ratelimit.Config, error) {
		return f.GetConfig()
	}); err != nil {
		return nil, err
	}

	// Register honeypot checker
	if err := container.Provide(honeypot.NewChecker); err != nil {
		return nil, err
	}

	// Register content validator with configured thresholds
	if err := container.Provide(func(cfg *config.Config) *content.Validator {
		return content.NewValidator(contentThresholds(cfg))
	}); err != nil {
		return nil, err
	}

	// Register risk verifier
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.RiskVerifier {
		riskCfg := cfg.GetRisk()
		if riskCfg.APIKey == "" || riskCfg.ProjectID == "" || riskCfg.SiteKey == "" {
			logger.Warn("Risk assessment credentials not fully configured",
				zap.Bool("fail_open", riskCfg.FailOpen))
		}
		return recaptcha.NewClient(riskCfg, logger)
	}); err != nil {
		return nil, err
	}

	// Register mailer
	if err := container.Provide(func(f *factory.MailerFactory) core.Mailer {
		return f.CreateMailer()
	}); err != nil {
		return nil, err
	}

	// Register spam guard service
	if err := container.Provide(core.NewSpamGuardService); err != nil {
		return nil, err
	}

	// Register HTTP handlers and server
	if err := container.Provide(func(
		cfg *config.Config,
		guard *core.SpamGuardService,
		mail core.Mailer,
		logger *zap.Logger,
	) *transporthttp.Handlers {
		return transporthttp.NewHandlers(guard, mail, cfg.GetServer().MaxBodyBytes, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(
		cfg *config.Config,
		handlers *transporthttp.Handlers,
		logger *zap.Logger,
	) *transporthttp.Server {
		return transporthttp.NewServer(cfg.GetServer(), handlers, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// contentThresholds maps the content config section onto the validator
// thresholds, keeping DefaultThresholds for anything not overridden
func contentThresholds(cfg *config.Config) content.Thresholds {
	t := content.DefaultThresholds()
	t.MinMessageWords = cfg.GetInt("content.min_message_words")
	t.VowelRatioMin = cfg.GetFloat64("content.vowel_ratio_min")
	t.VowelRatioMax = cfg.GetFloat64("content.vowel_ratio_max")
	t.MaxConsonantRun = cfg.GetInt("content.max_consonant_run")
	t.RepeatCount = cfg.GetInt("content.repeat_count")
	t.CaseTransitionRatio = cfg.GetFloat64("content.case_transition_ratio")
	t.MinAlphaPartRatio = cfg.GetFloat64("content.min_alpha_part_ratio")
	return t
}
