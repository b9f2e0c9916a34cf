// Package logger provides the printf-style logging interface shared by the
// schedulers, the operators and the timeseq command. Backends write to a
// stdlib *log.Logger, discard everything, record calls for tests, or fan
// out to several of the above.
package logger

import (
	"fmt"
	"log"
	"sync"
)

// Logger is the logging contract used across timeseq.
type Logger interface {
	// Debug logs diagnostic detail (e.g. "drained 3 items"). Backends may
	// drop debug output unless verbose logging was requested.
	Debug(format string, args ...any)

	// Info logs an informational message (e.g. "scheduler closed").
	Info(format string, args ...any)

	// Warning logs a recoverable problem (e.g. "cron expression has no next tick").
	Warning(format string, args ...any)

	// Error logs a failure (e.g. a handler panic with its stack).
	Error(format string, args ...any)

	// Close releases resources held by the logger. Safe to call multiple times.
	Close() error
}

// StandardLogger wraps a stdlib *log.Logger. Debug lines are only written
// when the logger was created verbose.
type StandardLogger struct {
	logger  *log.Logger
	verbose bool
}

// NewStandardLogger creates a logger that writes through l.
func NewStandardLogger(l *log.Logger, verbose bool) *StandardLogger {
	return &StandardLogger{logger: l, verbose: verbose}
}

// Debug logs with a [DEBUG] prefix when verbose.
func (s *StandardLogger) Debug(format string, args ...any) {
	if !s.verbose {
		return
	}
	s.logger.Printf("[DEBUG] "+format, args...)
}

// Info logs with an [INFO] prefix.
func (s *StandardLogger) Info(format string, args ...any) {
	s.logger.Printf("[INFO] "+format, args...)
}

// Warning logs with a [WARNING] prefix.
func (s *StandardLogger) Warning(format string, args ...any) {
	s.logger.Printf("[WARNING] "+format, args...)
}

// Error logs with an [ERROR] prefix.
func (s *StandardLogger) Error(format string, args ...any) {
	s.logger.Printf("[ERROR] "+format, args...)
}

// Close is a no-op.
func (s *StandardLogger) Close() error {
	return nil
}

// NopLogger discards all messages.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Debug(format string, args ...any)   {}
func (n *NopLogger) Info(format string, args ...any)    {}
func (n *NopLogger) Warning(format string, args ...any) {}
func (n *NopLogger) Error(format string, args ...any)   {}
func (n *NopLogger) Close() error                       { return nil }

// MockLogger records every formatted message. Unlike the other backends it
// is meant for tests; it is safe for concurrent use because schedulers log
// from timer goroutines.
type MockLogger struct {
	mu           sync.Mutex
	debugCalls   []string
	infoCalls    []string
	warningCalls []string
	errorCalls   []string
	closed       bool
}

// NewMockLogger creates an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(dst *[]string, format string, args []any) {
	m.mu.Lock()
	*dst = append(*dst, fmt.Sprintf(format, args...))
	m.mu.Unlock()
}

func (m *MockLogger) Debug(format string, args ...any)   { m.record(&m.debugCalls, format, args) }
func (m *MockLogger) Info(format string, args ...any)    { m.record(&m.infoCalls, format, args) }
func (m *MockLogger) Warning(format string, args ...any) { m.record(&m.warningCalls, format, args) }
func (m *MockLogger) Error(format string, args ...any)   { m.record(&m.errorCalls, format, args) }

// Close records that Close was called.
func (m *MockLogger) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// DebugCalls returns a copy of the recorded debug messages.
func (m *MockLogger) DebugCalls() []string { return m.snapshot(m.debugCalls) }

// InfoCalls returns a copy of the recorded info messages.
func (m *MockLogger) InfoCalls() []string { return m.snapshot(m.infoCalls) }

// WarningCalls returns a copy of the recorded warning messages.
func (m *MockLogger) WarningCalls() []string { return m.snapshot(m.warningCalls) }

// ErrorCalls returns a copy of the recorded error messages.
func (m *MockLogger) ErrorCalls() []string { return m.snapshot(m.errorCalls) }

// Closed reports whether Close was called.
func (m *MockLogger) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockLogger) snapshot(src []string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(src))
	copy(out, src)
	return out
}

var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*NopLogger)(nil)
	_ Logger = (*MockLogger)(nil)
)
