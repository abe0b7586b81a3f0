// Package mail implements the outbound notification boundary: formatting
// and dispatching a single summary email through an authenticated SMTP
// relay. Each Send is one bounded-duration attempt (connect, STARTTLS,
// authenticate, submit, close); transport and authentication errors
// propagate to the caller verbatim and nothing is retried.
//
// Recipient address syntax is the caller's responsibility: addresses that
// reach this package unvalidated surface as relay-level send failures, not
// pre-flight errors.
package mail

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// DefaultTimeout bounds a full send attempt when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// ErrNotConfigured indicates incomplete SMTP settings. It is returned
// before any network connection is attempted.
var ErrNotConfigured = errors.New("mail transport not configured")

// tagRE is the naive markup stripper used to derive a plain-text body from
// HTML. It is pattern-based, not a parser: entities and malformed tags are
// not specially handled. Known approximation, kept intentionally.
var tagRE = regexp.MustCompile(`<[^>]+>`)

// Config holds the SMTP relay settings. All fields except Timeout are
// required; Validate reports every missing one at once.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// Validate checks that every required relay setting is present.
// It returns an error wrapping ErrNotConfigured naming the missing fields.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Host) == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if c.Port <= 0 {
		missing = append(missing, "SMTP_PORT")
	}
	if strings.TrimSpace(c.Username) == "" {
		missing = append(missing, "SMTP_USERNAME")
	}
	if strings.TrimSpace(c.Password) == "" {
		missing = append(missing, "SMTP_PASSWORD")
	}
	if strings.TrimSpace(c.From) == "" {
		missing = append(missing, "SMTP_FROM")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}

// Mailer dispatches multipart (text + HTML) emails over one authenticated,
// STARTTLS-upgraded SMTP connection per call. It is safe for concurrent use.
type Mailer struct {
	cfg Config
}

// NewMailer returns a Mailer bound to cfg. The configuration is validated
// per call, not here, so an incompletely configured process can still serve
// every feature except sending.
func NewMailer(cfg Config) *Mailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Mailer{cfg: cfg}
}

// Send formats and submits one email to the given recipients.
//
// The configuration is checked first; if any required setting is absent the
// call fails with ErrNotConfigured before a connection is attempted. An
// empty textBody is derived from htmlBody by stripping markup tags. The
// outgoing message carries both parts as multipart/alternative, a Subject,
// From, the comma-joined To list, and a generated Message-ID.
func (m *Mailer) Send(ctx context.Context, recipients []string, subject, htmlBody, textBody string) error {
	if err := m.cfg.Validate(); err != nil {
		return err
	}

	msg, err := m.buildMessage(recipients, subject, htmlBody, textBody)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Username),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
		gomail.WithTimeout(m.cfg.Timeout),
	)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// buildMessage assembles the outgoing multipart message.
func (m *Mailer) buildMessage(recipients []string, subject, htmlBody, textBody string) (*gomail.Msg, error) {
	if textBody == "" {
		textBody = StripTags(htmlBody)
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", m.cfg.From, err)
	}
	if err := msg.To(recipients...); err != nil {
		return nil, fmt.Errorf("invalid recipient list: %w", err)
	}
	msg.Subject(subject)
	msg.SetMessageID()
	msg.SetBodyString(gomail.TypeTextPlain, textBody)
	msg.AddAlternativeString(gomail.TypeTextHTML, htmlBody)
	return msg, nil
}

// StripTags removes anything that looks like a markup tag from s. The
// result is the lossy plain-text fallback for HTML bodies.
func StripTags(s string) string {
	return tagRE.ReplaceAllString(s, "")
}
