// Package email delivers the rendered digest, either directly over SMTP
// or through the Resend broadcast API.
package email

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/godigest/internal/config"
	"github.com/jonesrussell/godigest/internal/logger"
)

// Message is one outbound email.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message and reports how many recipients it reached.
type Sender interface {
	Send(ctx context.Context, msg Message) (int, error)
}

// Subject builds the digest subject line for a day.
func Subject(name string, date time.Time) string {
	return fmt.Sprintf("%s – %s", name, date.Format("January 2, 2006"))
}

// TestMessage is the plain-text probe used to verify delivery config.
func TestMessage(name string) Message {
	return Message{
		Subject: name + " - Test Email",
		Text:    fmt.Sprintf("This is a test email from %s.\n\nIf you received this, your delivery config is working.", name),
	}
}

// NewSender picks the delivery path: Resend broadcasts when fully
// configured, plain SMTP otherwise.
func NewSender(cfg *config.Config, log logger.Logger) Sender {
	if cfg.Resend.Enabled() {
		client := NewResendClient(ResendClientConfig{APIKey: cfg.Resend.APIKey}, log)
		return NewResendSender(client, cfg.Resend.AudienceID, cfg.Digest.Name, cfg.SMTP.From, log)
	}
	return NewSMTPSender(cfg.SMTP, cfg.Digest.Name, cfg.Digest.Recipients, log)
}
