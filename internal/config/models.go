package config

import "time"

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	ListenAddress     string
	MaxBodyBytes      int64
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// RiskConfig represents the configuration for the external risk-assessment service
type RiskConfig struct {
	APIKey    string
	ProjectID string
	SiteKey   string
	Endpoint  string
	Threshold float64
	Timeout   time.Duration
	FailOpen  bool
}

// MailConfig represents the outbound SMTP configuration
type MailConfig struct {
	Enabled       bool
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	From          string
	To            string
	SubjectPrefix string
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	readHeaderTimeout, err := c.GetDuration("server.read_header_timeout")
	if err != nil {
		readHeaderTimeout = 5 * time.Second
	}
	shutdownTimeout, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		shutdownTimeout = 10 * time.Second
	}
	return ServerConfig{
		ListenAddress:     c.GetString("server.listen_address"),
		MaxBodyBytes:      int64(c.GetInt("server.max_body_bytes")),
		ReadHeaderTimeout: readHeaderTimeout,
		ShutdownTimeout:   shutdownTimeout,
	}
}

// GetRisk returns the risk-assessment configuration
func (c *Config) GetRisk() RiskConfig {
	timeout, err := c.GetDuration("risk.timeout")
	if err != nil {
		timeout = 10 * time.Second
	}
	return RiskConfig{
		APIKey:    c.GetString("risk.api_key"),
		ProjectID: c.GetString("risk.project_id"),
		SiteKey:   c.GetString("risk.site_key"),
		Endpoint:  c.GetString("risk.endpoint"),
		Threshold: c.GetFloat64("risk.threshold"),
		Timeout:   timeout,
		FailOpen:  c.GetBool("risk.fail_open"),
	}
}

// GetMail returns the outbound mail configuration
func (c *Config) GetMail() MailConfig {
	return MailConfig{
		Enabled:       c.GetBool("mail.enabled"),
		SMTPHost:      c.GetString("mail.smtp_host"),
		SMTPPort:      c.GetInt("mail.smtp_port"),
		SMTPUser:      c.GetString("mail.smtp_user"),
		SMTPPass:      c.GetString("mail.smtp_pass"),
		From:          c.GetString("mail.from"),
		To:            c.GetString("mail.to"),
		SubjectPrefix: c.GetString("mail.subject_prefix"),
	}
}
