package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func newBufferLogger(level LogLevel, redact bool) (*ConsoleLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewConsoleLogger(ConsoleLoggerConfig{
		Writer:          &buf,
		Level:           level,
		RedactSensitive: redact,
	}), &buf
}

func TestConsoleLogger_FormatsFields(t *testing.T) {
	logger, buf := newBufferLogger(INFO, false)

	logger.Info("Creating folder", F("path", "/project_data/a"), F("files", 2))

	got := strings.TrimSpace(buf.String())
	want := "INFO  Creating folder path=/project_data/a, files=2"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(WARN, false)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("filtered messages leaked: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn message missing: %q", buf.String())
	}
}

func TestConsoleLogger_ShortTraceID(t *testing.T) {
	logger, buf := newBufferLogger(INFO, false)

	logger.WithTraceID("abc").Info("short")
	logger.WithTraceID("0123456789abcdef").Info("long")

	out := buf.String()
	if !strings.Contains(out, "[abc] short") {
		t.Errorf("short trace id not rendered: %q", out)
	}
	if !strings.Contains(out, "[01234567] long") {
		t.Errorf("long trace id not truncated: %q", out)
	}
}

func TestConsoleLogger_WithContext(t *testing.T) {
	logger, buf := newBufferLogger(INFO, false)

	ctx := ContextWithTraceID(context.Background(), "ctx-trace-1")
	logger.WithContext(ctx).Info("traced")

	if !strings.Contains(buf.String(), "[ctx-trac] traced") {
		t.Errorf("output = %q", buf.String())
	}
	if logger.WithContext(context.Background()) != Logger(logger) {
		t.Error("WithContext without trace ID should return the same logger")
	}
}

func TestRedactSensitiveData(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		leaked  string
		present string
	}{
		{"api key header", "x-api-key: 0123abcd", "0123abcd", "x-api-key: [REDACTED]"},
		{"api key json", `{"api_key": "deadbeef"}`, "deadbeef", "[REDACTED]"},
		{"query key", "http://localhost/api/libraries?key=s3cret&deleted=false", "s3cret", "key=[REDACTED]"},
		{"basic auth", "Authorization: Basic YWRtaW46YWRtaW4=", "YWRtaW46YWRtaW4=", "Authorization: [REDACTED]"},
		{"password", "password=hunter2", "hunter2", "password=[REDACTED]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := redactSensitiveData(tt.input)
			if strings.Contains(got, tt.leaked) {
				t.Errorf("redactSensitiveData(%q) = %q leaks %q", tt.input, got, tt.leaked)
			}
			if !strings.Contains(got, tt.present) {
				t.Errorf("redactSensitiveData(%q) = %q, want it to contain %q", tt.input, got, tt.present)
			}
		})
	}
}

func TestConsoleLogger_RedactsFieldValues(t *testing.T) {
	logger, buf := newBufferLogger(INFO, true)

	logger.Info("Authenticating", F("header", "x-api-key: abcdef123"))

	if strings.Contains(buf.String(), "abcdef123") {
		t.Errorf("api key leaked: %q", buf.String())
	}
}

func TestColorSupported_NonFile(t *testing.T) {
	if ColorSupported(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DEBUG,
		"VERBOSE": DEBUG,
		"warn":    WARN,
		"error":   ERROR,
		"normal":  INFO,
		"":        INFO,
	}
	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
