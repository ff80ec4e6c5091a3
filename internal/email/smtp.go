package email

import (
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/jonesrussell/godigest/internal/config"
	"github.com/jonesrussell/godigest/internal/logger"
)

// SMTPSender delivers directly to the configured recipient list over
// SMTP with STARTTLS.
type SMTPSender struct {
	cfg        config.SMTPConfig
	name       string
	recipients []string
	log        logger.Logger

	// sendMail is swapped in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates an SMTPSender.
func NewSMTPSender(cfg config.SMTPConfig, name string, recipients []string, log logger.Logger) *SMTPSender {
	return &SMTPSender{
		cfg:        cfg,
		name:       name,
		recipients: recipients,
		log:        log,
		sendMail:   smtp.SendMail,
	}
}

// Send builds a multipart/alternative message and submits it. Returns
// the recipient count on success.
func (s *SMTPSender) Send(_ context.Context, msg Message) (int, error) {
	if len(s.recipients) == 0 {
		return 0, fmt.Errorf("no recipients configured")
	}

	body, err := s.buildMessage(msg)
	if err != nil {
		return 0, err
	}

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	if err := s.sendMail(s.cfg.Addr(), auth, s.cfg.From, s.recipients, body); err != nil {
		return 0, fmt.Errorf("smtp send: %w", err)
	}

	s.log.Info("digest sent via smtp",
		logger.Int("recipients", len(s.recipients)),
		logger.String("subject", msg.Subject))
	return len(s.recipients), nil
}

func (s *SMTPSender) buildMessage(msg Message) ([]byte, error) {
	var b strings.Builder
	var mw *multipart.Writer

	fmt.Fprintf(&b, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", s.name), s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(s.recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case msg.HTML != "" && msg.Text != "":
		mw = multipart.NewWriter(&b)
		fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
		if err := writePart(mw, "text/plain", msg.Text); err != nil {
			return nil, err
		}
		if err := writePart(mw, "text/html", msg.HTML); err != nil {
			return nil, err
		}
		if err := mw.Close(); err != nil {
			return nil, fmt.Errorf("close multipart body: %w", err)
		}
	case msg.HTML != "":
		b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		b.WriteString(msg.HTML)
	default:
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(msg.Text)
	}

	return []byte(b.String()), nil
}

func writePart(mw *multipart.Writer, contentType, body string) error {
	header := textproto.MIMEHeader{
		"Content-Type": {contentType + "; charset=utf-8"},
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create %s part: %w", contentType, err)
	}
	if _, err := part.Write([]byte(body)); err != nil {
		return fmt.Errorf("write %s part: %w", contentType, err)
	}
	return nil
}
