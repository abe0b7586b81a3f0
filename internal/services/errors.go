// Package services defines the business logic for summaries, generation,
// and outbound mail. This file centralizes common service-level error values
// so that they can be consistently returned by service methods and checked
// by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes should be performed at the
// handler layer.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSummaryNotFound indicates that the requested summary record does
	// not exist.
	ErrSummaryNotFound = errors.New("summary not found")

	// ErrEmptyTranscript is returned when a generation request carries no
	// transcript text.
	ErrEmptyTranscript = errors.New("transcript is empty")

	// ErrTranscriptTooLong is returned when the transcript exceeds the
	// configured length limit.
	ErrTranscriptTooLong = errors.New("transcript too long")

	// ErrEmptySummary is returned when a save request carries no summary
	// text.
	ErrEmptySummary = errors.New("summary is empty")

	// ErrNoRecipients is returned when a send request carries no recipient
	// addresses after trimming.
	ErrNoRecipients = errors.New("no recipients provided")
)

// InvalidRecipientsError reports every syntactically invalid address found
// in a send request. The send is aborted before any relay connection, so
// the caller can show the full list at once.
type InvalidRecipientsError struct {
	Addresses []string
}

// Error implements the error interface.
func (e *InvalidRecipientsError) Error() string {
	return fmt.Sprintf("invalid recipient addresses: %s", strings.Join(e.Addresses, ", "))
}
