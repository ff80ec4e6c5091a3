package config_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/godigest/internal/config"
)

func TestLoadAppliesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := config.Load()

	assert.Equal(t, "data/digest.db", cfg.Database.Path)
	assert.Equal(t, "sources.json", cfg.Data.SourcesFile)
	assert.Equal(t, config.DefaultFetchTimeout, cfg.Fetch.Timeout)
	assert.Equal(t, config.DefaultFetchConcurrency, cfg.Fetch.Concurrency)
	assert.Equal(t, config.DefaultFetchMaxRetries, cfg.Fetch.MaxRetries)
	assert.Equal(t, config.DefaultFailureThreshold, cfg.Fetch.FailureThreshold)
	assert.Equal(t, config.DefaultDedupWindowDays, cfg.Fetch.DedupWindowDays)
	assert.Equal(t, config.DefaultSMTPHost, cfg.SMTP.Host)
	assert.Equal(t, config.DefaultDigestName, cfg.Digest.Name)
	assert.Equal(t, config.DefaultServerAddress, cfg.Server.Address)
	require.NoError(t, cfg.Validate())
}

func TestLoadSplitsRecipientList(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("digest.email", "a@example.com, b@example.com ,,c@example.com")

	cfg := config.Load()

	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, cfg.Digest.Recipients)
}

func TestSMTPFromDefaultsToUser(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("smtp.user", "digest@example.com")

	cfg := config.Load()

	assert.Equal(t, "digest@example.com", cfg.SMTP.From)
	assert.Equal(t, "smtp.gmail.com:587", cfg.SMTP.Addr())
}

func TestValidateDelivery(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := config.Load()
	err := cfg.ValidateDelivery()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_USER")
	assert.Contains(t, err.Error(), "SMTP_PASS")
	assert.Contains(t, err.Error(), "DIGEST_EMAIL")

	cfg.SMTP.User = "u"
	cfg.SMTP.Password = "p"
	cfg.Digest.Recipients = []string{"a@example.com"}
	assert.NoError(t, cfg.ValidateDelivery())
}

func TestValidateDeliveryAcceptsResend(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := config.Load()
	cfg.Resend.APIKey = "re_123"
	cfg.Resend.AudienceID = "aud_456"

	assert.NoError(t, cfg.ValidateDelivery())
	assert.True(t, cfg.Resend.Enabled())
}

func TestAgentArgv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := config.Load()
	argv := cfg.Agent.Argv()

	require.NotEmpty(t, argv)
	assert.Equal(t, "claude", argv[0])
}
