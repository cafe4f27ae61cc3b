package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observed(t *testing.T) (*Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar(), redact: true}, logs
}

func TestSecretsAreRedacted(t *testing.T) {
	log, logs := observed(t)

	log.Info("gemini configured", "gemini_api_key", "AIza-super-secret", "model", "models/gemini-2.0-flash")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if got := fields["gemini_api_key"]; got != "[REDACTED]" {
		t.Fatalf("api key leaked: %v", got)
	}
	if got := fields["model"]; got != "models/gemini-2.0-flash" {
		t.Fatalf("unexpected model field: %v", got)
	}
}

func TestClientIPIsHashed(t *testing.T) {
	log, logs := observed(t)

	log.With("client_ip", "10.0.0.7").Info("HTTP request")

	fields := logs.All()[0].ContextMap()
	got, _ := fields["client_ip"].(string)
	if got == "10.0.0.7" || len(got) != len("hash:")+12 {
		t.Fatalf("client ip not hashed: %q", got)
	}
}

func TestRedactionDisabled(t *testing.T) {
	log, logs := observed(t)
	log.redact = false

	log.Warn("raw", "token", "abc")

	if got := logs.All()[0].ContextMap()["token"]; got != "abc" {
		t.Fatalf("want raw value when redaction is off, got %v", got)
	}
}

func TestNewTestModeIsSilent(t *testing.T) {
	log, err := New("test")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Error("nothing should be written", "error", "boom")
	log.Sync()
}
