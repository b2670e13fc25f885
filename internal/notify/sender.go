// Package notify delivers outbound email.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/url"

	"github.com/dajohi/goemail"

	"userauth/internal/logging"
)

// Sender delivers a message to an address.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// mailer is the part of goemail.SMTP used by SMTPSender.
type mailer interface {
	Send(msg *goemail.Message) error
}

// SMTPSender is a SMTP client for sending HTML emails from a preset address.
type SMTPSender struct {
	client      mailer // SMTP client
	mailName    string // From name
	mailAddress string // From email address
	disabled    bool   // Has email been disabled
	logger      logging.Logger
}

// Ensure SMTPSender implements Sender
var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender returns a sender for the smtps server at host. Email is
// disabled when host, user or password is empty; a disabled sender accepts
// and drops every message.
func NewSMTPSender(host, user, password, emailAddress string, skipVerify bool, logger logging.Logger) (*SMTPSender, error) {
	if host == "" || user == "" || password == "" {
		return &SMTPSender{disabled: true, logger: logger}, nil
	}

	u := url.URL{
		Scheme: "smtps",
		User:   url.UserPassword(user, password),
		Host:   host,
	}

	a, err := mail.ParseAddress(emailAddress)
	if err != nil {
		return nil, fmt.Errorf("parse sender address: %w", err)
	}

	tlsConfig := &tls.Config{InsecureSkipVerify: skipVerify}
	client, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}

	return &SMTPSender{
		client:      client,
		mailName:    a.Name,
		mailAddress: a.Address,
		logger:      logger,
	}, nil
}

// IsEnabled returns whether the mail server is enabled.
func (s *SMTPSender) IsEnabled() bool {
	return !s.disabled
}

// Send delivers an HTML email to a single recipient. goemail has no context
// support, so the send runs in its own goroutine and Send returns as soon as
// ctx is done; the abandoned send finishes in the background.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if s.disabled {
		s.logger.Warn(ctx, "email is disabled; dropping message", "subject", subject)
		return nil
	}

	msg := goemail.NewHTMLMessage(s.mailAddress, subject, htmlBody)
	msg.SetName(s.mailName)
	msg.AddTo(to)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.client.Send(msg)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send email: %w", ctx.Err())
	}
}
