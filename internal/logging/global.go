package logging

import (
	"context"
	"fmt"
	"sync"
)

var (
	globalLogger *Logger
	loggerMutex  sync.RWMutex
)

// Initialize sets up the global logger with the given configuration.
func Initialize(config *Config) error {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	logger, err := New(config)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	globalLogger = logger
	return nil
}

// GetLogger returns the global logger instance, falling back to defaults
// if nobody called Initialize yet.
func GetLogger() *Logger {
	loggerMutex.RLock()
	l := globalLogger
	loggerMutex.RUnlock()
	if l != nil {
		return l
	}

	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if globalLogger == nil {
		logger, err := New(DefaultConfig())
		if err != nil {
			logger, _ = New(&Config{OutputConsole: true, Level: LevelInfo})
		}
		globalLogger = logger
	}
	return globalLogger
}

// WithContext attaches structured fields to the global logger.
func WithContext(fields map[string]interface{}) *Logger {
	return GetLogger().WithContext(fields)
}

// WithOperation tags the global logger with an operation name.
func WithOperation(operation string) *Logger {
	return GetLogger().WithOperation(operation)
}

// WithError attaches an error to the global logger.
func WithError(err error) *Logger {
	return GetLogger().WithError(err)
}

// NewTrace creates a trace context for a single CLI invocation (one diff or
// patch run) so every log line it emits can be correlated.
func NewTrace(operation string) *TraceContext {
	return NewTraceContext(operation)
}

// ContextWithTrace attaches a trace context to a context.Context.
func ContextWithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return NewContextWithTrace(ctx, trace)
}

// TraceFromCtx retrieves the trace context attached with ContextWithTrace,
// or nil if none is present.
func TraceFromCtx(ctx context.Context) *TraceContext {
	return TraceFromContext(ctx)
}

// Shutdown releases the global logger so a subsequent GetLogger call
// rebuilds it from defaults.
func Shutdown() {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	globalLogger = nil
}
