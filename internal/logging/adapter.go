package logging

import "github.com/rs/zerolog"

// Logger is the logging interface the simulation components depend on.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// ZeroLogger adapts zerolog.Logger to the Logger interface.
type ZeroLogger struct {
	logger zerolog.Logger
}

// NewZeroLogger creates a new ZeroLogger wrapping a zerolog.Logger.
func NewZeroLogger(logger zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{logger: logger}
}

// Nop returns a Logger that discards everything.
func Nop() *ZeroLogger {
	return NewZeroLogger(zerolog.Nop())
}

// Debug logs a debug message with optional key-value pairs.
func (l *ZeroLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(toFields(keysAndValues)).Msg(msg)
}

// Info logs an info message with optional key-value pairs.
func (l *ZeroLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info().Fields(toFields(keysAndValues)).Msg(msg)
}

// Warn logs a warning with optional key-value pairs.
func (l *ZeroLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn().Fields(toFields(keysAndValues)).Msg(msg)
}

// Error logs an error message with optional key-value pairs.
func (l *ZeroLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error().Fields(toFields(keysAndValues)).Msg(msg)
}

// toFields converts key-value pairs to a map for zerolog.
func toFields(keysAndValues []any) map[string]any {
	fields := make(map[string]any, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}
