package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func fullConfig() Config {
	return Config{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "mailer@example.com",
		Password: "secret",
		From:     "mailer@example.com",
		Timeout:  time.Second,
	}
}

func TestConfig_Validate_ReportsEveryMissingField(t *testing.T) {
	err := Config{}.Validate()
	if err == nil {
		t.Fatalf("expected error for empty config")
	}
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	for _, field := range []string{"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("error should name %s: %v", field, err)
		}
	}
}

func TestConfig_Validate_SingleMissingField(t *testing.T) {
	cfg := fullConfig()
	cfg.Password = "  "
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "SMTP_PASSWORD") {
		t.Fatalf("expected SMTP_PASSWORD to be reported, got %v", err)
	}
	if strings.Contains(err.Error(), "SMTP_HOST") {
		t.Fatalf("present fields must not be reported: %v", err)
	}
}

func TestConfig_Validate_Complete(t *testing.T) {
	if err := fullConfig().Validate(); err != nil {
		t.Fatalf("complete config must validate: %v", err)
	}
}

func TestSend_IncompleteConfig_FailsBeforeDialing(t *testing.T) {
	// Host points at a closed port; if Send tried to connect, the error
	// would be a dial failure, not ErrNotConfigured.
	cfg := fullConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	cfg.From = ""
	m := NewMailer(cfg)

	err := m.Send(context.Background(), []string{"a@example.com"}, "s", "<p>x</p>", "")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured before any connection, got %v", err)
	}
}

func TestBuildMessage_MultipartAlternativeWithMessageID(t *testing.T) {
	m := NewMailer(fullConfig())
	msg, err := m.buildMessage(
		[]string{"a@example.com", "b@example.org"},
		"Meeting Summary: Weekly sync",
		"<h2>Weekly sync</h2><pre>Summary: budget discussed.</pre>",
		"",
	)
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("render message: %v", err)
	}
	raw := buf.String()

	for _, want := range []string{
		"Content-Type: multipart/alternative",
		"Message-ID:",
		"Subject: Meeting Summary: Weekly sync",
		"From: <mailer@example.com>",
		"a@example.com",
		"b@example.org",
		"Summary: budget discussed.",
	} {
		if !strings.Contains(raw, want) {
			t.Fatalf("rendered message missing %q:\n%s", want, raw)
		}
	}
	// The plain part must have had the tags stripped away.
	if strings.Contains(StripTags("<h2>Weekly sync</h2><pre>Summary: budget discussed.</pre>"), "<") {
		t.Fatalf("plain fallback still contains markup")
	}
}

func TestBuildMessage_InvalidFrom(t *testing.T) {
	cfg := fullConfig()
	cfg.From = "not an address"
	m := NewMailer(cfg)
	if _, err := m.buildMessage([]string{"a@example.com"}, "s", "<p>x</p>", ""); err == nil {
		t.Fatalf("expected error for malformed from address")
	}
}

func TestStripTags(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<h2>Title</h2><pre>body</pre>", "Titlebody"},
		{"no markup at all", "no markup at all"},
		{"<a href=\"x\">link</a> tail", "link tail"},
		{"", ""},
		// Naive stripper: an unclosed angle bracket survives untouched.
		{"a < b and a > b", "a < b and a > b"},
	}
	for _, c := range cases {
		if got := StripTags(c.in); got != c.want {
			t.Fatalf("StripTags(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNewMailer_DefaultTimeout(t *testing.T) {
	cfg := fullConfig()
	cfg.Timeout = 0
	m := NewMailer(cfg)
	if m.cfg.Timeout != DefaultTimeout {
		t.Fatalf("expected default timeout %v, got %v", DefaultTimeout, m.cfg.Timeout)
	}
}
