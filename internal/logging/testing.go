// internal/logging/testing.go
package logging

import (
	"regexp"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger records every entry so tests can assert on scan diagnostics.
type TestLogger struct {
	*Logger
	observed *observer.ObservedLogs
}

// NewTestLogger creates a logger that observes all levels including trace.
func NewTestLogger() *TestLogger {
	core, observed := observer.New(TraceLevel)
	return &TestLogger{
		Logger:   &Logger{zap: zap.New(core), config: NewDefaultConfig()},
		observed: observed,
	}
}

// All returns all logged entries.
func (t *TestLogger) All() []observer.LoggedEntry {
	return t.observed.All()
}

// FilterMessage returns entries whose message contains msg.
func (t *TestLogger) FilterMessage(msg string) *observer.ObservedLogs {
	return t.observed.FilterMessageSnippet(msg)
}

// Reset clears all logged entries.
func (t *TestLogger) Reset() {
	t.observed.TakeAll()
}

// AssertLogged fails tb unless an entry at level contains msgContains.
func (t *TestLogger) AssertLogged(tb testing.TB, level zapcore.Level, msgContains string) {
	tb.Helper()
	if t.count(level, msgContains) == 0 {
		tb.Errorf("expected log at %v containing %q, got %d entries", level, msgContains, t.observed.Len())
	}
}

// AssertNotLogged fails tb if an entry at level contains msgContains.
func (t *TestLogger) AssertNotLogged(tb testing.TB, level zapcore.Level, msgContains string) {
	tb.Helper()
	if n := t.count(level, msgContains); n > 0 {
		tb.Errorf("unexpected %d log(s) at %v containing %q", n, level, msgContains)
	}
}

func (t *TestLogger) count(level zapcore.Level, msgContains string) int {
	n := 0
	for _, entry := range t.observed.All() {
		if entry.Level == level && strings.Contains(entry.Message, msgContains) {
			n++
		}
	}
	return n
}

// AssertField fails tb unless an entry containing msg has a string field
// key equal to expected.
func (t *TestLogger) AssertField(tb testing.TB, msg, key, expected string) {
	tb.Helper()
	for _, entry := range t.FilterMessage(msg).All() {
		if v, ok := entry.ContextMap()[key]; ok && v == expected {
			return
		}
	}
	tb.Errorf("field %q=%q not found in message %q", key, expected, msg)
}

// AssertRunID fails tb unless an entry containing msg carries run.id.
func (t *TestLogger) AssertRunID(tb testing.TB, msg, runID string) {
	tb.Helper()
	t.AssertField(tb, msg, "run.id", runID)
}

var leakPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._-]{8,}`),
	regexp.MustCompile(`sk-[A-Za-z0-9_-]{16,}`),
}

// AssertNoSecrets fails tb if any message or string field looks like an
// API key or bearer token.
func (t *TestLogger) AssertNoSecrets(tb testing.TB) {
	tb.Helper()
	for _, entry := range t.observed.All() {
		values := []string{entry.Message}
		for _, field := range entry.Context {
			if field.Type == zapcore.StringType {
				values = append(values, field.String)
			}
		}
		for _, v := range values {
			for _, re := range leakPatterns {
				if re.MatchString(v) {
					tb.Errorf("secret leaked in log entry %q: %q", entry.Message, v)
				}
			}
		}
	}
}
