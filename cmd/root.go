// Package cmd implements the godigest command-line interface: the full
// pipeline plus operational subcommands for fetching, rendering,
// delivery, and serving the archive.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/godigest/cmd/fetch"
	"github.com/jonesrussell/godigest/cmd/render"
	"github.com/jonesrussell/godigest/cmd/run"
	"github.com/jonesrussell/godigest/cmd/schedule"
	"github.com/jonesrussell/godigest/cmd/send"
	"github.com/jonesrussell/godigest/cmd/serve"
	"github.com/jonesrussell/godigest/cmd/testemail"
	"github.com/jonesrussell/godigest/cmd/validate"
)

// Version is stamped at build time.
var Version = "dev"

var (
	// Debug enables debug mode for all commands.
	Debug bool

	rootCmd = &cobra.Command{
		Use:   "godigest",
		Short: "A daily news digest pipeline",
		Long:  `Fetches RSS feeds, curates them through an external agent, and delivers an HTML digest by email.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are visible to viper.
	_ = godotenv.Load()

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug mode")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("godigest version %s\n", Version)
		},
	})

	rootCmd.AddCommand(run.Command())
	rootCmd.AddCommand(fetch.Command())
	rootCmd.AddCommand(render.Command())
	rootCmd.AddCommand(send.Command())
	rootCmd.AddCommand(validate.Command())
	rootCmd.AddCommand(testemail.Command())
	rootCmd.AddCommand(serve.Command())
	rootCmd.AddCommand(schedule.Command())
}

// initConfig wires viper: environment variables take precedence over
// defaults, and the well-known env names map onto config keys.
func initConfig() error {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := bindEnvVars(); err != nil {
		return err
	}

	if err := viper.BindPFlag("app.debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("failed to bind debug flag: %w", err)
	}

	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	return nil
}

// bindEnvVars maps the documented environment variables onto config keys.
func bindEnvVars() error {
	bindings := map[string][]string{
		"app.environment":         {"APP_ENV"},
		"logger.level":            {"LOG_LEVEL"},
		"logger.format":           {"LOG_FORMAT"},
		"database.path":           {"DATABASE_PATH"},
		"data.dir":                {"DATA_DIR"},
		"data.sources_file":       {"SOURCES_FILE"},
		"fetch.timeout":           {"FETCH_TIMEOUT"},
		"fetch.concurrency":       {"FETCH_CONCURRENCY"},
		"fetch.max_retries":       {"FETCH_MAX_RETRIES"},
		"fetch.retry_delay":       {"FETCH_RETRY_DELAY"},
		"fetch.failure_threshold": {"ALERT_FAILURE_THRESHOLD"},
		"fetch.dedup_window_days": {"DEDUP_WINDOW_DAYS"},
		"agent.command":           {"AGENT_COMMAND"},
		"smtp.host":               {"SMTP_HOST"},
		"smtp.port":               {"SMTP_PORT"},
		"smtp.user":               {"SMTP_USER"},
		"smtp.password":           {"SMTP_PASS"},
		"smtp.from":               {"SMTP_FROM"},
		"digest.email":            {"DIGEST_EMAIL"},
		"digest.name":             {"DIGEST_NAME"},
		"digest.feedback_email":   {"FEEDBACK_EMAIL"},
		"digest.public_base_url":  {"PUBLIC_BASE_URL"},
		"resend.api_key":          {"RESEND_API_KEY"},
		"resend.audience_id":      {"RESEND_AUDIENCE_ID"},
		"server.address":          {"SERVER_ADDRESS"},
	}
	for key, envs := range bindings {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", envs[0], err)
		}
	}
	return nil
}
