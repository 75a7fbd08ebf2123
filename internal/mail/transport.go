package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
	gomail "gopkg.in/mail.v2"
)

// SMTPTransport sends through an SMTP relay.
type SMTPTransport struct {
	dialer *gomail.Dialer
}

// NewSMTPTransport returns a transport for host:port. Empty credentials
// skip AUTH.
func NewSMTPTransport(host string, port int, username, password string) *SMTPTransport {
	return &SMTPTransport{dialer: gomail.NewDialer(host, port, username, password)}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", msg.FromAddress, msg.FromName)
	m.SetAddressHeader("To", msg.ToAddress, msg.ToName)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	if err := t.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

// ResendTransport sends through the Resend HTTP API.
type ResendTransport struct {
	client *resend.Client
}

// NewResendTransport returns a transport authenticated with apiKey.
func NewResendTransport(apiKey string) *ResendTransport {
	return &ResendTransport{client: resend.NewClient(apiKey)}
}

func (t *ResendTransport) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", msg.FromName, msg.FromAddress),
		To:      []string{msg.ToAddress},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	if _, err := t.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// LogTransport writes the message to the log instead of sending it. Used
// when no mail provider is configured, so signup still works offline.
type LogTransport struct {
	logger *slog.Logger
}

func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Send(_ context.Context, msg Message) error {
	t.logger.Info("email not sent (no mail provider configured)",
		slog.String("to", msg.ToAddress),
		slog.String("subject", msg.Subject),
	)
	t.logger.Debug("email body", slog.String("text", msg.Text))
	return nil
}
