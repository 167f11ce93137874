// Package mail sends transactional email over SMTP.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/We2399/idea-launcher-pro-sub001/internal/application/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/config"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

var invitationText = texttemplate.Must(texttemplate.New("invitation.txt").Parse(
	`{{.InviterName}} invited you to join {{.OrganizationName}} as {{.Role}}.

Accept the invitation: {{.AcceptURL}}

The link expires on {{.ExpiresAt.Format "2 Jan 2006 15:04 MST"}}.
`))

var invitationHTML = htmltemplate.Must(htmltemplate.New("invitation.html").Parse(
	`<p>{{.InviterName}} invited you to join <strong>{{.OrganizationName}}</strong> as {{.Role}}.</p>
<p><a href="{{.AcceptURL}}">Accept the invitation</a></p>
<p>The link expires on {{.ExpiresAt.Format "2 Jan 2006 15:04 MST"}}.</p>
`))

// SMTPMailer implements identity.InvitationMailer
type SMTPMailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
	dial   func(ctx context.Context, msg *gomail.Msg) error
}

// NewSMTPMailer creates a mailer. Nothing is dialled until the first send.
func NewSMTPMailer(cfg config.MailConfig, logger *zap.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("mail: smtp host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("mail: from address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &SMTPMailer{cfg: cfg, logger: logger}
	m.dial = m.dialAndSend
	return m, nil
}

// SendInvitation renders and sends the invitation email
func (m *SMTPMailer) SendInvitation(ctx context.Context, email identity.InvitationEmail) error {
	var text, html bytes.Buffer
	if err := invitationText.Execute(&text, email); err != nil {
		return fmt.Errorf("mail: render invitation: %w", err)
	}
	if err := invitationHTML.Execute(&html, email); err != nil {
		return fmt.Errorf("mail: render invitation: %w", err)
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("mail: from: %w", err)
	}
	if err := msg.To(email.To); err != nil {
		return fmt.Errorf("mail: to: %w", err)
	}
	msg.Subject(fmt.Sprintf("You're invited to %s", email.OrganizationName))
	msg.SetBodyString(gomail.TypeTextPlain, text.String())
	msg.AddAlternativeString(gomail.TypeTextHTML, html.String())

	if err := m.dial(ctx, msg); err != nil {
		return fmt.Errorf("mail: send invitation: %w", err)
	}
	m.logger.Info("Invitation email sent", zap.String("organization", email.OrganizationName))
	return nil
}

func (m *SMTPMailer) dialAndSend(ctx context.Context, msg *gomail.Msg) error {
	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password))
	}
	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// LogMailer stands in when mail is disabled
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a mailer that only logs the accept link
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// SendInvitation logs the invitation
func (m *LogMailer) SendInvitation(_ context.Context, email identity.InvitationEmail) error {
	m.logger.Info("Mail disabled, invitation not sent",
		zap.String("organization", email.OrganizationName),
		zap.String("accept_url", email.AcceptURL))
	return nil
}

var (
	_ identity.InvitationMailer = (*SMTPMailer)(nil)
	_ identity.InvitationMailer = (*LogMailer)(nil)
)
