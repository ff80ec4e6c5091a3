// Package config defines the application configuration, constructed once at
// startup and passed into each component.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonesrussell/godigest/internal/logger"
)

// Default configuration values.
const (
	DefaultFetchTimeout     = 15 * time.Second
	DefaultFetchConcurrency = 10
	DefaultFetchMaxRetries  = 3
	DefaultFetchRetryDelay  = 2 * time.Second
	DefaultFailureThreshold = 3
	DefaultDedupWindowDays  = 7
	DefaultSMTPHost         = "smtp.gmail.com"
	DefaultSMTPPort         = 587
	DefaultDigestName       = "News Digest"
	DefaultServerAddress    = ":8080"
	DefaultReadTimeout      = 10 * time.Second
	DefaultWriteTimeout     = 30 * time.Second
	DefaultAgentCommand     = "claude --print --permission-mode acceptEdits /news-digest"
)

// Config is the full application configuration.
type Config struct {
	App      AppConfig
	Logger   logger.Config
	Database DatabaseConfig
	Data     DataConfig
	Fetch    FetchConfig
	Agent    AgentConfig
	SMTP     SMTPConfig
	Resend   ResendConfig
	Digest   DigestConfig
	Server   ServerConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Environment string
	Debug       bool
}

// DatabaseConfig holds the SQLite location.
type DatabaseConfig struct {
	Path string
}

// DataConfig holds the working directory layout.
type DataConfig struct {
	// Dir is the root data directory.
	Dir string
	// SourcesFile is the path to the sources.json configuration.
	SourcesFile string
}

// FetchDir returns the directory for per-source fetched article JSON.
func (d DataConfig) FetchDir() string { return d.Dir + "/fetched" }

// AgentInputDir returns the directory for agent input CSVs.
func (d DataConfig) AgentInputDir() string { return d.Dir + "/agent_input" }

// SelectionsPath returns the path the agent writes its selections to.
func (d DataConfig) SelectionsPath() string { return d.AgentInputDir() + "/selections.json" }

// FetchConfig tunes the feed fetcher.
type FetchConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
	// Concurrency bounds the fetch worker pool.
	Concurrency int
	// MaxRetries is the attempt ceiling for retryable failures.
	MaxRetries int
	// RetryDelay is the base backoff delay, doubled per attempt.
	RetryDelay time.Duration
	// FailureThreshold is the consecutive-failure count that raises a
	// persistent failing-source alert.
	FailureThreshold int
	// DedupWindowDays is the shown-headline lookback window.
	DedupWindowDays int
}

// AgentConfig configures the external curation agent subprocess.
type AgentConfig struct {
	// Command is the full command line, split on whitespace.
	Command string
}

// Argv returns the agent command as an argument vector.
func (a AgentConfig) Argv() []string { return strings.Fields(a.Command) }

// SMTPConfig configures SMTP delivery.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	// From is a separate From address when the provider requires one
	// (iCloud and similar); defaults to User.
	From string
}

// Addr returns the host:port dial address.
func (s SMTPConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// ResendConfig configures the Resend broadcast delivery path.
type ResendConfig struct {
	APIKey     string
	AudienceID string
}

// Enabled reports whether the Resend path is fully configured.
func (r ResendConfig) Enabled() bool { return r.APIKey != "" && r.AudienceID != "" }

// DigestConfig holds branding and recipient settings.
type DigestConfig struct {
	// Name is the display name used in From and Subject lines.
	Name string
	// Recipients is the SMTP recipient list.
	Recipients []string
	// FeedbackEmail enables the feedback footer when set.
	FeedbackEmail string
	// PublicBaseURL enables the "view in browser" link when set.
	PublicBaseURL string
}

// ServerConfig configures the digest web server.
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load builds the configuration from viper (defaults, config file, env).
func Load() *Config {
	cfg := &Config{
		App: AppConfig{
			Environment: viper.GetString("app.environment"),
			Debug:       viper.GetBool("app.debug"),
		},
		Logger: logger.Config{
			Level:       viper.GetString("logger.level"),
			Format:      viper.GetString("logger.format"),
			Development: viper.GetBool("logger.development"),
		},
		Database: DatabaseConfig{
			Path: viper.GetString("database.path"),
		},
		Data: DataConfig{
			Dir:         viper.GetString("data.dir"),
			SourcesFile: viper.GetString("data.sources_file"),
		},
		Fetch: FetchConfig{
			Timeout:          viper.GetDuration("fetch.timeout"),
			Concurrency:      viper.GetInt("fetch.concurrency"),
			MaxRetries:       viper.GetInt("fetch.max_retries"),
			RetryDelay:       viper.GetDuration("fetch.retry_delay"),
			FailureThreshold: viper.GetInt("fetch.failure_threshold"),
			DedupWindowDays:  viper.GetInt("fetch.dedup_window_days"),
		},
		Agent: AgentConfig{
			Command: viper.GetString("agent.command"),
		},
		SMTP: SMTPConfig{
			Host:     viper.GetString("smtp.host"),
			Port:     viper.GetInt("smtp.port"),
			User:     viper.GetString("smtp.user"),
			Password: viper.GetString("smtp.password"),
			From:     viper.GetString("smtp.from"),
		},
		Resend: ResendConfig{
			APIKey:     viper.GetString("resend.api_key"),
			AudienceID: viper.GetString("resend.audience_id"),
		},
		Digest: DigestConfig{
			Name:          viper.GetString("digest.name"),
			Recipients:    splitRecipients(viper.GetString("digest.email")),
			FeedbackEmail: viper.GetString("digest.feedback_email"),
			PublicBaseURL: strings.TrimRight(viper.GetString("digest.public_base_url"), "/"),
		},
		Server: ServerConfig{
			Address:      viper.GetString("server.address"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
		},
	}

	setDefaults(cfg)

	return cfg
}

// splitRecipients parses a comma-separated recipient list.
func splitRecipients(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	recipients := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	return recipients
}

// setDefaults fills in zero-valued fields.
func setDefaults(cfg *Config) {
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/digest.db"
	}
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "data"
	}
	if cfg.Data.SourcesFile == "" {
		cfg.Data.SourcesFile = "sources.json"
	}
	if cfg.Fetch.Timeout <= 0 {
		cfg.Fetch.Timeout = DefaultFetchTimeout
	}
	if cfg.Fetch.Concurrency <= 0 {
		cfg.Fetch.Concurrency = DefaultFetchConcurrency
	}
	if cfg.Fetch.MaxRetries <= 0 {
		cfg.Fetch.MaxRetries = DefaultFetchMaxRetries
	}
	if cfg.Fetch.RetryDelay <= 0 {
		cfg.Fetch.RetryDelay = DefaultFetchRetryDelay
	}
	if cfg.Fetch.FailureThreshold <= 0 {
		cfg.Fetch.FailureThreshold = DefaultFailureThreshold
	}
	if cfg.Fetch.DedupWindowDays <= 0 {
		cfg.Fetch.DedupWindowDays = DefaultDedupWindowDays
	}
	if cfg.Agent.Command == "" {
		cfg.Agent.Command = DefaultAgentCommand
	}
	if cfg.SMTP.Host == "" {
		cfg.SMTP.Host = DefaultSMTPHost
	}
	if cfg.SMTP.Port <= 0 {
		cfg.SMTP.Port = DefaultSMTPPort
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}
	if cfg.Digest.Name == "" {
		cfg.Digest.Name = DefaultDigestName
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = DefaultServerAddress
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
}

// ValidateDelivery checks that delivery credentials are present. Only
// required when a command will actually send email.
func (c *Config) ValidateDelivery() error {
	if c.Resend.Enabled() {
		return nil
	}
	var missing []string
	if c.SMTP.User == "" {
		missing = append(missing, "SMTP_USER")
	}
	if c.SMTP.Password == "" {
		missing = append(missing, "SMTP_PASS")
	}
	if len(c.Digest.Recipients) == 0 {
		missing = append(missing, "DIGEST_EMAIL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing delivery configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Validate checks invariants that hold for every command.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if c.Data.Dir == "" {
		return errors.New("data.dir is required")
	}
	if len(c.Agent.Argv()) == 0 {
		return errors.New("agent.command is required")
	}
	return nil
}
