package telemetry

import "log"

// Logger exposes the logging capabilities required by relay components.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger to the Logger interface.
func WrapLogger(logger *log.Logger) Logger {
	return &loggerAdapter{logger: logger}
}

type loggerAdapter struct {
	logger *log.Logger
}

func (l *loggerAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}

// StandardLogger exposes the wrapped logger for callers that need one.
func (l *loggerAdapter) StandardLogger() *log.Logger {
	return l.logger
}

// Metrics exposes the counter methods required by relay components.
type Metrics interface {
	Add(key string, delta uint64)
}

type nopMetrics struct{}

func (nopMetrics) Add(string, uint64) {}

// NopMetrics discards every update.
func NopMetrics() Metrics {
	return nopMetrics{}
}
