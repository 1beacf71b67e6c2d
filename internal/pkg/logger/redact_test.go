package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"normal address", "john.doe@example.com", "jo***@example.com"},
		{"short local part", "ab@example.com", "***@example.com"},
		{"not an email", "not-an-email", "***@***"},
		{"empty", "", "***@***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactEmail(tt.email); got != tt.want {
				t.Errorf("RedactEmail(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

func TestLogRedactsSecretsAndEmails(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	Init(INFO)

	Info("subscriber added",
		"email", "ursula_le_guin@gmail.com",
		"authorization_token", "postmark-secret-token",
		"note", "contact john.doe@example.com for details",
	)

	out := buf.String()
	if strings.Contains(out, "ursula_le_guin@gmail.com") {
		t.Errorf("log output leaked full email: %s", out)
	}
	if !strings.Contains(out, "ur***@gmail.com") {
		t.Errorf("log output missing redacted email: %s", out)
	}
	if strings.Contains(out, "postmark-secret-token") {
		t.Errorf("log output leaked secret token: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Errorf("log output missing redaction marker: %s", out)
	}
	if strings.Contains(out, "john.doe@example.com") {
		t.Errorf("log output leaked embedded email: %s", out)
	}
}

func TestLogLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	Init(WARN)
	defer Init(INFO)

	Debug("not logged")
	Info("not logged either")
	Warn("logged")

	out := buf.String()
	if strings.Contains(out, "not logged") {
		t.Errorf("levels below WARN were emitted: %s", out)
	}
	if !strings.Contains(out, "logged") {
		t.Errorf("WARN entry missing: %s", out)
	}
}
