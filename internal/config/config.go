package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	LogLevel string `mapstructure:"log_level"`

	Environment        string        `mapstructure:"fleet_env"`
	BaseURL            string        `mapstructure:"fleet_base_url"`
	Username           string        `mapstructure:"fleet_username"`
	Password           string        `mapstructure:"fleet_password"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	EnvironmentsFile string `mapstructure:"environments_file"`
	NotifiersFile    string `mapstructure:"notifiers_file"`
	VPNConfigDir     string `mapstructure:"vpn_config_dir"`

	NotifyMaxAttempts int           `mapstructure:"notify_max_attempts"`
	NotifyBackoffMS   int64         `mapstructure:"notify_backoff_ms"`
	NotifyBackoff     time.Duration `mapstructure:"-"`

	JournalType            string        `mapstructure:"journal_type"`
	JournalPath            string        `mapstructure:"journal_path"`
	JournalTTLSeconds      int64         `mapstructure:"journal_ttl_seconds"`
	JournalCleanupSeconds  int64         `mapstructure:"journal_cleanup_interval_seconds"`
	JournalTTL             time.Duration `mapstructure:"-"`
	JournalCleanupInterval time.Duration `mapstructure:"-"`
}

// HasCredentials reports whether a username was configured.
func (c *Config) HasCredentials() bool { return c != nil && c.Username != "" }

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "fleetctl")
	v.SetDefault("log_level", "warn")
	v.SetDefault("fleet_env", "prod_web")
	v.SetDefault("fleet_base_url", "")
	v.SetDefault("fleet_username", "")
	v.SetDefault("fleet_password", "")
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("environments_file", "")
	v.SetDefault("notifiers_file", "")
	v.SetDefault("vpn_config_dir", "./image_files/vpn/configs")
	v.SetDefault("notify_max_attempts", 3)
	v.SetDefault("notify_backoff_ms", 200)
	v.SetDefault("journal_type", "bbolt")
	v.SetDefault("journal_path", "./data/journal.db")
	v.SetDefault("journal_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("journal_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Finalize validates numeric settings and derives durations. Call it again
// after overriding fields by hand.
func (c *Config) Finalize() error {
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	c.HTTPTimeout = time.Duration(c.HTTPTimeoutSeconds) * time.Second

	if c.JournalTTLSeconds <= 0 {
		return fmt.Errorf("invalid journal_ttl_seconds (must be positive seconds)")
	}
	if c.JournalCleanupSeconds <= 0 {
		return fmt.Errorf("invalid journal_cleanup_interval_seconds (must be positive seconds)")
	}
	if c.NotifyMaxAttempts < 0 {
		return fmt.Errorf("invalid notify_max_attempts (must not be negative)")
	}
	if c.NotifyBackoffMS < 0 {
		return fmt.Errorf("invalid notify_backoff_ms (must not be negative)")
	}
	c.NotifyBackoff = time.Duration(c.NotifyBackoffMS) * time.Millisecond

	c.JournalTTL = time.Duration(c.JournalTTLSeconds) * time.Second
	c.JournalCleanupInterval = time.Duration(c.JournalCleanupSeconds) * time.Second
	return nil
}
