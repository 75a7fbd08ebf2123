// Package mail renders and sends account emails: address verification
// after signup and password reset instructions.
//
// Rendering and delivery are split. Mailer fills the embedded templates;
// a Transport delivers the result over SMTP, through the Resend API, or
// into the log when nothing is configured.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmlTmpl "html/template"
	"net/url"
	"strings"
	txtTmpl "text/template"
)

// Message is a rendered email.
type Message struct {
	FromName    string
	FromAddress string
	ToName      string
	ToAddress   string
	Subject     string
	Text        string
	HTML        string
}

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Sender is what the account service needs.
type Sender interface {
	SendVerification(ctx context.Context, toName, toAddress string) error
	SendPasswordReset(ctx context.Context, toName, toAddress string) error
}

var subjects = map[string]string{
	"verify": "Verify your email address",
	"reset":  "Reset your password",
}

// paths under APP_BASE_URL that each template links to
var actionPaths = map[string]string{
	"verify": "/verify-email",
	"reset":  "/reset-password",
}

type tmplVars struct {
	FromName  string
	AppURL    string
	Subject   string
	ToName    string
	ToAddress string
	ActionURL string
}

//go:embed templates/*
var templates embed.FS

// Config is the sender identity and the base URL links point at.
type Config struct {
	FromName    string
	FromAddress string
	AppBaseURL  string
}

// Mailer renders templates and hands them to a Transport.
type Mailer struct {
	transport Transport
	config    Config
}

var _ Sender = (*Mailer)(nil)

// NewMailer returns a Mailer sending through transport.
func NewMailer(transport Transport, cfg Config) *Mailer {
	cfg.AppBaseURL = strings.TrimRight(cfg.AppBaseURL, "/")
	return &Mailer{transport: transport, config: cfg}
}

func (m *Mailer) SendVerification(ctx context.Context, toName, toAddress string) error {
	return m.send(ctx, "verify", toName, toAddress)
}

func (m *Mailer) SendPasswordReset(ctx context.Context, toName, toAddress string) error {
	return m.send(ctx, "reset", toName, toAddress)
}

func (m *Mailer) send(ctx context.Context, tmplName, toName, toAddress string) error {
	msg, err := m.Render(tmplName, toName, toAddress)
	if err != nil {
		return err
	}
	if err := m.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("mail: sending %s email: %w", tmplName, err)
	}
	return nil
}

// Render builds the message for tmplName ("verify" or "reset").
func (m *Mailer) Render(tmplName, toName, toAddress string) (Message, error) {
	subject, ok := subjects[tmplName]
	if !ok {
		return Message{}, fmt.Errorf("mail: unknown template %q", tmplName)
	}
	if toName == "" {
		toName = toAddress
	}

	vars := tmplVars{
		FromName:  m.config.FromName,
		AppURL:    m.config.AppBaseURL,
		Subject:   subject,
		ToName:    toName,
		ToAddress: toAddress,
		ActionURL: m.config.AppBaseURL + actionPaths[tmplName] + "?email=" + url.QueryEscape(toAddress),
	}

	var txtBuf, htmlBuf bytes.Buffer

	tt, err := txtTmpl.ParseFS(templates, "templates/base.txt", fmt.Sprintf("templates/%s.txt", tmplName))
	if err != nil {
		return Message{}, fmt.Errorf("mail: parsing %s text template: %w", tmplName, err)
	}
	if err := tt.ExecuteTemplate(&txtBuf, "base", &vars); err != nil {
		return Message{}, fmt.Errorf("mail: rendering %s text template: %w", tmplName, err)
	}

	ht, err := htmlTmpl.ParseFS(templates, "templates/base.html", fmt.Sprintf("templates/%s.html", tmplName))
	if err != nil {
		return Message{}, fmt.Errorf("mail: parsing %s html template: %w", tmplName, err)
	}
	if err := ht.ExecuteTemplate(&htmlBuf, "base", &vars); err != nil {
		return Message{}, fmt.Errorf("mail: rendering %s html template: %w", tmplName, err)
	}

	return Message{
		FromName:    m.config.FromName,
		FromAddress: m.config.FromAddress,
		ToName:      toName,
		ToAddress:   toAddress,
		Subject:     subject,
		Text:        txtBuf.String(),
		HTML:        htmlBuf.String(),
	}, nil
}
