package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// stubSender records the last send and returns a canned error.
type stubSender struct {
	calls     int
	to        []string
	subject   string
	htmlBody  string
	textBody  string
	err       error
}

func (s *stubSender) Send(ctx context.Context, recipients []string, subject, htmlBody, textBody string) error {
	s.calls++
	s.to = recipients
	s.subject = subject
	s.htmlBody = htmlBody
	s.textBody = textBody
	return s.err
}

func TestParseRecipients_StringAndListEquivalent(t *testing.T) {
	fromString := ParseRecipients([]string{"a@x.com, b@y.com"})
	fromList := ParseRecipients([]string{"a@x.com", "b@y.com"})
	if !reflect.DeepEqual(fromString, fromList) {
		t.Fatalf("string vs list mismatch: %v vs %v", fromString, fromList)
	}
	if !reflect.DeepEqual(fromString, []string{"a@x.com", "b@y.com"}) {
		t.Fatalf("unexpected parse result: %v", fromString)
	}
}

func TestParseRecipients_TrimsAndDropsBlanks(t *testing.T) {
	got := ParseRecipients([]string{"  a@x.com ,, ", "  ", " b@y.com "})
	want := []string{"a@x.com", "b@y.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSendSummary_NoRecipients(t *testing.T) {
	stub := &stubSender{}
	svc := NewMailService(stub)

	err := svc.SendSummary(context.Background(), []string{" , ,  "}, "s", "body")
	if !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("transport must not be called")
	}
}

func TestSendSummary_InvalidAddressBlocksSend(t *testing.T) {
	stub := &stubSender{}
	svc := NewMailService(stub)

	err := svc.SendSummary(context.Background(),
		[]string{"good@example.com, not-an-email, also bad"}, "s", "body")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var inv *InvalidRecipientsError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidRecipientsError, got %T: %v", err, err)
	}
	if len(inv.Addresses) != 2 || inv.Addresses[0] != "not-an-email" {
		t.Fatalf("expected both invalid addresses reported, got %v", inv.Addresses)
	}
	if !strings.Contains(err.Error(), "not-an-email") {
		t.Fatalf("error message should list offenders: %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("no relay call may be attempted when any address is invalid")
	}
}

func TestSendSummary_BuildsEscapedHTMLBody(t *testing.T) {
	stub := &stubSender{}
	svc := NewMailService(stub)

	err := svc.SendSummary(context.Background(),
		[]string{"a@x.com"}, "Budget <Q3>", "line1\n<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("SendSummary: %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("expected exactly one send, got %d", stub.calls)
	}
	if stub.subject != "Budget <Q3>" {
		t.Fatalf("subject must pass through unescaped: %q", stub.subject)
	}
	if !strings.HasPrefix(stub.htmlBody, "<h2>Budget &lt;Q3&gt;</h2><pre>") {
		t.Fatalf("html body wrong: %q", stub.htmlBody)
	}
	if strings.Contains(stub.htmlBody, "<script>") {
		t.Fatalf("summary content must be escaped: %q", stub.htmlBody)
	}
	if stub.textBody != "" {
		t.Fatalf("text fallback is derived by the transport, got %q", stub.textBody)
	}
}

func TestSendSummary_TransportErrorPropagates(t *testing.T) {
	boom := errors.New("535 authentication failed")
	stub := &stubSender{err: boom}
	svc := NewMailService(stub)

	err := svc.SendSummary(context.Background(), []string{"a@x.com"}, "s", "b")
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error verbatim, got %v", err)
	}
}
