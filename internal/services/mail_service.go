// Package services – MailService
//
// This file implements MailService, the application-level component in
// front of the SMTP mailer. It normalizes and validates the recipient list,
// builds the HTML body around the current summary text, and performs one
// send attempt. Address syntax is checked here, before the mailer: the
// transport layer never sees an address this service rejected.
package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MailSender is the transport contract required by MailService.
type MailSender interface {
	// Send dispatches one multipart email; an empty textBody is derived
	// from htmlBody by the transport.
	Send(ctx context.Context, recipients []string, subject, htmlBody, textBody string) error
}

// MailService validates recipients and dispatches summary emails.
type MailService struct {
	Sender   MailSender
	validate *validator.Validate
}

// NewMailService constructs a MailService around the given transport.
func NewMailService(sender MailSender) *MailService {
	return &MailService{
		Sender:   sender,
		validate: validator.New(),
	}
}

// ParseRecipients normalizes raw recipient input into a clean address list.
// Each entry may itself be comma-delimited, so a single "a@x.com, b@y.com"
// string and a ["a@x.com","b@y.com"] list produce the same result. Entries
// are trimmed and blanks are dropped.
func ParseRecipients(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			if a := strings.TrimSpace(part); a != "" {
				out = append(out, a)
			}
		}
	}
	return out
}

// SendSummary validates the recipients and sends the summary text as an
// HTML email with the subject embedded as a heading.
//
// An empty effective recipient list yields ErrNoRecipients; any
// syntactically invalid address aborts the send with an
// InvalidRecipientsError listing all offenders; no relay connection is
// attempted in either case. Transport errors propagate verbatim.
func (s *MailService) SendSummary(ctx context.Context, recipients []string, subject, summary string) error {
	addrs := ParseRecipients(recipients)
	if len(addrs) == 0 {
		return ErrNoRecipients
	}

	var invalid []string
	for _, a := range addrs {
		if err := s.validate.Var(a, "required,email"); err != nil {
			invalid = append(invalid, a)
		}
	}
	if len(invalid) > 0 {
		return &InvalidRecipientsError{Addresses: invalid}
	}

	body := fmt.Sprintf("<h2>%s</h2><pre>%s</pre>",
		html.EscapeString(subject), html.EscapeString(summary))

	return s.Sender.Send(ctx, addrs, subject, body, "")
}
