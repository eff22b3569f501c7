// Package logger defines the logging interface used throughout topicmux.
// Services depend on the Logger interface rather than a concrete logging
// library so that tests can plug in a no-op implementation.
package logger

// Field is a single structured key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// Logger is the minimal structured logging surface used by topicmux services.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}
