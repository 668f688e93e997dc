package instrumentation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

const (
	testSession  = "mcp-session-42"
	testUser     = "Jane"
	testToolBook = "schedule_meeting"
)

func TestToolInvocation_NewAndComplete(t *testing.T) {
	ti := NewToolInvocation(testToolBook)
	if ti.Tool != testToolBook {
		t.Errorf("Tool = %q, want %q", ti.Tool, testToolBook)
	}
	if ti.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	ti.Complete(true, nil)
	if !ti.Success {
		t.Error("Success should be true")
	}
	if ti.Duration < 0 {
		t.Error("Duration should not be negative")
	}
	if ti.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusSuccess)
	}
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation(testToolBook).Complete(false, errors.New("calendar unreachable"))
	if ti.Success {
		t.Error("Success should be false")
	}
	if ti.Error != "calendar unreachable" {
		t.Errorf("Error = %q", ti.Error)
	}
	if ti.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusError)
	}
}

func TestToolInvocation_WithSpanContextNoSpan(t *testing.T) {
	ti := NewToolInvocation(testToolBook).WithSpanContext(context.Background())
	if ti.TraceID != "" || ti.SpanID != "" {
		t.Error("expected no trace context without an active span")
	}
}

func attrMap(attrs []slog.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value.String()
	}
	return m
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	ti := NewToolInvocation(testToolBook).
		WithSession(testSession).
		WithUser(testUser).
		WithOutcome("rejected", "remote_conflict").
		Complete(true, nil)

	anon := attrMap(ti.LogAttrs(false))
	if anon["session"] == testSession || !strings.HasPrefix(anon["session"], "user:") {
		t.Errorf("session should be anonymized, got %q", anon["session"])
	}
	if anon["user"] == testUser {
		t.Error("user should be anonymized")
	}
	if anon["outcome"] != "rejected" || anon["reason"] != "remote_conflict" {
		t.Errorf("unexpected outcome attrs: %v", anon)
	}

	pii := attrMap(ti.LogAttrs(true))
	if pii["session"] != testSession || pii["user"] != testUser {
		t.Errorf("expected raw identifiers with PII enabled, got %v", pii)
	}
}

func TestToolInvocation_LogAttrsOmitsEmpty(t *testing.T) {
	attrs := attrMap(NewToolInvocation("get_availability").Complete(true, nil).LogAttrs(false))
	for _, key := range []string{"session", "user", "outcome", "reason", "trace_id", "error"} {
		if _, ok := attrs[key]; ok {
			t.Errorf("unexpected attribute %q", key)
		}
	}
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	tests := []struct {
		name    string
		config  AuditLoggingConfig
		success bool
		want    string
	}{
		{"success logged at info", AuditLoggingConfig{Enabled: true}, true, "tool_executed"},
		{"failure logged at warn", AuditLoggingConfig{Enabled: true}, false, "tool_failed"},
		{"disabled logs nothing", AuditLoggingConfig{Enabled: false}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			al := NewAuditLoggerWithConfig(slog.New(slog.NewTextHandler(&buf, nil)), tt.config)

			ti := NewToolInvocation(testToolBook).WithSession(testSession).Complete(tt.success, nil)
			al.LogToolInvocation(ti)

			if tt.want == "" {
				if buf.Len() != 0 {
					t.Errorf("expected no output, got %q", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.want)
			}
			if strings.Contains(buf.String(), testSession) {
				t.Error("session ID must not be logged without PII enabled")
			}
		})
	}
}

func TestAuditLogger_Nil(t *testing.T) {
	var al *AuditLogger
	// Should not panic
	al.LogToolInvocation(NewToolInvocation(testToolBook))
}
