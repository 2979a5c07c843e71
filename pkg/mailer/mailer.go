// Package mailer sends HTML email with optional attachments over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/gomail.v2"
)

// DefaultPort is the SMTP submission port.
const DefaultPort = 587

var ErrIncompleteConfig = errors.New("smtp host and from address are required")

// SMTPConfig identifies the relay and sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Attachment is an in-memory file.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Email is one outbound message.
type Email struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Dialer delivers composed messages.
type Dialer interface {
	DialAndSend(msgs ...*gomail.Message) error
}

// DialerFactory opens a dialer for a relay.
type DialerFactory func(cfg SMTPConfig) Dialer

// Mailer composes messages with gomail.
type Mailer struct {
	dial DialerFactory
}

// New returns a mailer that dials the configured relay per send.
func New() *Mailer {
	return &Mailer{dial: func(cfg SMTPConfig) Dialer {
		return gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}}
}

// NewWithDialer swaps the transport, mainly for tests.
func NewWithDialer(dial DialerFactory) *Mailer {
	return &Mailer{dial: dial}
}

// Send composes and delivers email. ctx is checked before dialing; gomail
// itself does not take a context.
func (m *Mailer) Send(ctx context.Context, cfg SMTPConfig, email Email) error {
	if strings.TrimSpace(cfg.Host) == "" || strings.TrimSpace(cfg.From) == "" {
		return ErrIncompleteConfig
	}
	if strings.TrimSpace(email.To) == "" {
		return errors.New("recipient is required")
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := Compose(cfg.From, email)
	if err := m.dial(cfg).DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", cfg.Host, err)
	}
	return nil
}

// Compose builds the MIME message.
func Compose(from string, email Email) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/html", email.HTML)
	for _, att := range email.Attachments {
		data := att.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if att.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{"Content-Type": {att.ContentType}}))
		}
		msg.Attach(att.Filename, settings...)
	}
	return msg
}
