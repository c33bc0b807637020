package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/formgate/")
	v.AddConfigPath("$HOME/.formgate")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("FORMGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.listen_address", "0.0.0.0:8080")
	v.SetDefault("server.max_body_bytes", 65536)
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Content check defaults. Thresholds were tuned by hand against real
	// submissions from the live forms; re-validate against a labeled sample
	// before tightening any of them.
	v.SetDefault("content.min_message_words", 3)
	v.SetDefault("content.vowel_ratio_min", 0.15)
	v.SetDefault("content.vowel_ratio_max", 0.65)
	v.SetDefault("content.max_consonant_run", 5)
	v.SetDefault("content.repeat_count", 3)
	v.SetDefault("content.case_transition_ratio", 0.6)
	v.SetDefault("content.min_alpha_part_ratio", 0.8)

	// Rate limit defaults
	v.SetDefault("ratelimit.type", "memory")
	v.SetDefault("ratelimit.max_requests", 5)
	v.SetDefault("ratelimit.window", "60s")
	v.SetDefault("ratelimit.cleanup_frequency", "1m")
	v.SetDefault("ratelimit.sqlite_path", "/data/formgate_ratelimit.db")
	v.SetDefault("ratelimit.mysql_dsn", "user:password@tcp(localhost:3306)/formgate")

	// Risk assessment defaults
	v.SetDefault("risk.api_key", "")
	v.SetDefault("risk.project_id", "")
	v.SetDefault("risk.site_key", "")
	v.SetDefault("risk.endpoint", "")
	v.SetDefault("risk.threshold", 0.5)
	v.SetDefault("risk.timeout", "10s")
	v.SetDefault("risk.fail_open", true)

	// Mail defaults
	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.smtp_host", "localhost")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.smtp_user", "")
	v.SetDefault("mail.smtp_pass", "")
	v.SetDefault("mail.from", "no-reply@oakline.example")
	v.SetDefault("mail.to", "intake@oakline.example")
	v.SetDefault("mail.subject_prefix", "[Oakline]")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
