// Package mailer delivers HTML mail over SMTP.
package mailer

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hisabkitab/internal/server/config"
	"github.com/wneessen/go-mail"
)

// Sender delivers one HTML message to one recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	fromName string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		host:     cfg.MailHost,
		port:     cfg.MailPort,
		user:     cfg.MailUser,
		password: cfg.MailPassword,
		fromName: cfg.MailFromName,
	}
}

// seams for tests
var (
	newClient = mail.NewClient

	dialAndSend = func(ctx context.Context, c *mail.Client, msgs ...*mail.Msg) error {
		return c.DialAndSendWithContext(ctx, msgs...)
	}
)

func (s *SMTPSender) message(to, subject, htmlBody string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.user); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	return msg, nil
}

func (s *SMTPSender) options() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	// local relays such as mailpit accept unauthenticated submission
	if s.password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.user),
			mail.WithPassword(s.password),
		)
	}
	return opts
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg, err := s.message(to, subject, htmlBody)
	if err != nil {
		return err
	}

	client, err := newClient(s.host, s.options()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := dialAndSend(ctx, client, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
