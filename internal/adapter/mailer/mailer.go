// Package mailer sends notification emails over SMTP.
package mailer

import (
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/skillsync/skillsync/internal/domain"
)

// SMTPMailer implements domain.Mailer on top of an SMTP relay.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// New builds an SMTPMailer. Credentials are optional; an unauthenticated
// relay is accepted for local setups.
func New(host string, port int, user, password, from string) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(user),
			mail.WithPassword(password),
		)
	}
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("op=mailer.new: %w", err)
	}
	return &SMTPMailer{client: client, from: from}, nil
}

// Send delivers one HTML email.
func (m *SMTPMailer) Send(ctx domain.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("op=mailer.send: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("op=mailer.send: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("op=mailer.send: %w", err)
	}
	return nil
}
