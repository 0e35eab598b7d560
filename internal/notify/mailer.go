// Package notify delivers digests. The pipeline only sees the Sink
// interface; SMTP details and credentials stay here and are injected at
// construction rather than read from the environment at send time.
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/bekzodm/sponsorhunt/internal/pipeline"
)

// Sink accepts one digest per run and reports delivery success. On error
// the caller must not persist emailSent mutations.
type Sink interface {
	Dispatch(ctx context.Context, digest *pipeline.Digest) error
}

// DispatchError wraps a sink delivery failure.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("notify: dispatch failed: %v", e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Credentials are the sender account and recipient for the digest email.
type Credentials struct {
	Sender    string
	Password  string
	Recipient string
}

// SMTPMailer sends the digest as an HTML email over authenticated SMTP
// with STARTTLS.
type SMTPMailer struct {
	host  string
	port  int
	creds Credentials
}

func NewSMTPMailer(host string, port int, creds Credentials) (*SMTPMailer, error) {
	if host == "" || port <= 0 {
		return nil, fmt.Errorf("notify: smtp host and port are required")
	}
	if creds.Sender == "" || creds.Password == "" {
		return nil, fmt.Errorf("notify: sender credentials are required")
	}
	if creds.Recipient == "" {
		return nil, fmt.Errorf("notify: recipient is required")
	}
	return &SMTPMailer{host: host, port: port, creds: creds}, nil
}

func (m *SMTPMailer) Dispatch(ctx context.Context, digest *pipeline.Digest) error {
	if digest == nil {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(m.creds.Sender); err != nil {
		return &DispatchError{Err: fmt.Errorf("set sender: %w", err)}
	}
	if err := msg.To(m.creds.Recipient); err != nil {
		return &DispatchError{Err: fmt.Errorf("set recipient: %w", err)}
	}
	msg.Subject(digest.Subject)
	msg.SetBodyString(mail.TypeTextHTML, digest.HTML)

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.creds.Sender),
		mail.WithPassword(m.creds.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return &DispatchError{Err: fmt.Errorf("smtp client: %w", err)}
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return &DispatchError{Err: err}
	}
	return nil
}
