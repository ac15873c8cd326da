package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("New() accepted an unknown level")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("New() accepted an unknown format")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below the level were emitted:\n%s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("messages at or above the level missing:\n%s", out)
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("request served", "route", "/api/courses", "status", 200)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "request served" {
		t.Errorf("msg = %v, want %q", entry["msg"], "request served")
	}
	if entry["route"] != "/api/courses" {
		t.Errorf("route = %v, want %q", entry["route"], "/api/courses")
	}
}

func TestSensitiveKeysAreRedacted(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", RedactSecrets: true, Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("login attempt", "user", "alice", "password", "hunter2", "api_key", "sk-12345")

	out := buf.String()
	if strings.Contains(out, "hunter2") || strings.Contains(out, "sk-12345") {
		t.Errorf("secrets reached the output:\n%s", out)
	}
	if !strings.Contains(out, "alice") {
		t.Errorf("non-sensitive field was dropped:\n%s", out)
	}
}

func TestEmbeddedSecretsAreRedacted(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", RedactSecrets: true, Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("upstream call",
		"url", "https://api.example.com/login?password=hunter2",
		"header", "Bearer eyJhbGciOiJIUzI1NiJ9.payload.sig")

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Errorf("password literal reached the output:\n%s", out)
	}
	if strings.Contains(out, "eyJhbGciOiJIUzI1NiJ9") {
		t.Errorf("bearer token reached the output:\n%s", out)
	}
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.With("service", "course-service").Info("started")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["service"] != "course-service" {
		t.Errorf("service = %v, want the bound field", entry["service"])
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Info("into the void")
	logger.Error("also into the void")
}

func TestRedactString(t *testing.T) {
	r := NewRedactor()

	tests := []struct {
		name string
		in   string
		deny string
	}{
		{name: "password pair", in: "password=opensesame timeout=5", deny: "opensesame"},
		{name: "token pair", in: "token: tok_abc123", deny: "tok_abc123"},
		{name: "secret pair", in: "secret=deep", deny: "deep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.RedactString(tt.in)
			if strings.Contains(out, tt.deny) {
				t.Errorf("RedactString(%q) = %q, still contains the secret", tt.in, out)
			}
		})
	}

	if got := r.RedactString("plain text without credentials"); got != "plain text without credentials" {
		t.Errorf("clean string was altered: %q", got)
	}
}
