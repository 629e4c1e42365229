package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

// ConsoleLogger implements Logger interface for console output
type ConsoleLogger struct {
	mu               sync.Mutex
	writer           io.Writer
	level            LogLevel
	traceID          string
	colorEnabled     bool
	timestampEnabled bool
	redactSensitive  bool
}

// ConsoleLoggerConfig contains configuration for console logger
type ConsoleLoggerConfig struct {
	Writer           io.Writer
	Level            LogLevel
	ColorEnabled     bool
	TimestampEnabled bool
	RedactSensitive  bool
}

// ColorSupported reports whether w is a terminal that can render ANSI colors
func ColorSupported(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewConsoleLogger creates a new console logger
func NewConsoleLogger(config ConsoleLoggerConfig) *ConsoleLogger {
	if config.Writer == nil {
		config.Writer = os.Stderr
	}

	return &ConsoleLogger{
		writer:           config.Writer,
		level:            config.Level,
		colorEnabled:     config.ColorEnabled,
		timestampEnabled: config.TimestampEnabled,
		redactSensitive:  config.RedactSensitive,
	}
}

// Patterns for sensitive data redaction
var (
	// Galaxy API keys in headers or query strings
	apiKeyHeaderPattern = regexp.MustCompile(`(?i)(x-api-key|api_key|apikey)(["']?\s*[:=]\s*["']?)[A-Za-z0-9\-._~+/]+=*`)
	apiKeyQueryPattern  = regexp.MustCompile(`([?&]key=)[^&\s"']+`)
	// Basic auth and bearer credentials
	authHeaderPattern = regexp.MustCompile(`(?i)authorization["']?\s*[:=]\s*["']?(Basic|Bearer)\s+[A-Za-z0-9\-._~+/]+=*`)
	// Passwords in key=value or JSON form
	passwordPattern = regexp.MustCompile(`(?i)(password)(["']?\s*[:=]\s*["']?)[^\s"',}]+`)
)

// redactSensitiveData redacts sensitive information from log messages
func redactSensitiveData(s string) string {
	s = authHeaderPattern.ReplaceAllString(s, "Authorization: [REDACTED]")
	s = apiKeyHeaderPattern.ReplaceAllString(s, "$1$2[REDACTED]")
	s = apiKeyQueryPattern.ReplaceAllString(s, "$1[REDACTED]")
	s = passwordPattern.ReplaceAllString(s, "$1$2[REDACTED]")
	return s
}

var levelColors = map[LogLevel]string{
	DEBUG: colorBlue,
	INFO:  colorReset,
	WARN:  colorYellow,
	ERROR: colorRed,
}

// paint writes text wrapped in color when colors are on
func (l *ConsoleLogger) paint(sb *strings.Builder, color, text string) {
	if !l.colorEnabled || color == "" {
		sb.WriteString(text)
		return
	}
	sb.WriteString(color)
	sb.WriteString(text)
	sb.WriteString(colorReset)
}

// formatMessage renders one line: [time] LEVEL [trace] message k=v, k=v
func (l *ConsoleLogger) formatMessage(level LogLevel, msg string, fields ...Field) string {
	var sb strings.Builder

	if l.timestampEnabled {
		l.paint(&sb, colorGray, time.Now().Format(time.DateTime))
		sb.WriteByte(' ')
	}

	l.paint(&sb, levelColors[level], fmt.Sprintf("%-5s", level.String()))
	sb.WriteByte(' ')

	if l.traceID != "" {
		short := l.traceID
		if len(short) > 8 {
			short = short[:8]
		}
		l.paint(&sb, colorGray, "["+short+"]")
		sb.WriteByte(' ')
	}

	if l.redactSensitive {
		msg = redactSensitiveData(msg)
	}
	sb.WriteString(msg)

	for i, field := range fields {
		sep := ", "
		if i == 0 {
			sep = " "
		}
		value := fmt.Sprint(field.Value)
		if l.redactSensitive {
			value = redactSensitiveData(value)
		}
		sb.WriteString(sep + field.Key + "=" + value)
	}

	return sb.String()
}

// log writes a log message to the console
func (l *ConsoleLogger) log(level LogLevel, msg string, fields ...Field) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintln(l.writer, l.formatMessage(level, msg, fields...))
}

// Debug logs a debug-level message
func (l *ConsoleLogger) Debug(msg string, fields ...Field) {
	l.log(DEBUG, msg, fields...)
}

// Info logs an info-level message
func (l *ConsoleLogger) Info(msg string, fields ...Field) {
	l.log(INFO, msg, fields...)
}

// Warn logs a warning-level message
func (l *ConsoleLogger) Warn(msg string, fields ...Field) {
	l.log(WARN, msg, fields...)
}

// Error logs an error-level message
func (l *ConsoleLogger) Error(msg string, fields ...Field) {
	l.log(ERROR, msg, fields...)
}

// WithTraceID returns a logger sharing l's output that tags lines with traceID
func (l *ConsoleLogger) WithTraceID(traceID string) Logger {
	l.mu.Lock()
	level := l.level
	l.mu.Unlock()
	return &ConsoleLogger{
		writer:           l.writer,
		level:            level,
		traceID:          traceID,
		colorEnabled:     l.colorEnabled,
		timestampEnabled: l.timestampEnabled,
		redactSensitive:  l.redactSensitive,
	}
}

// WithContext returns a new logger that extracts trace ID from context
func (l *ConsoleLogger) WithContext(ctx context.Context) Logger {
	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		return l
	}
	return l.WithTraceID(traceID)
}

// SetLevel sets the minimum log level
func (l *ConsoleLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Close closes the logger (no-op for console logger)
func (l *ConsoleLogger) Close() error {
	return nil
}
