package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rgehrsitz/xmldiff/internal/errors"
)

// CorrelationIDKey is the context key for correlation IDs.
type CorrelationIDKey struct{}

// TraceContext correlates the log lines that LogOperation and LogError
// emit for a single diff or patch invocation.
type TraceContext struct {
	CorrelationID string            `json:"correlation_id"`
	Operation     string            `json:"operation,omitempty"`
	StartTime     time.Time         `json:"start_time"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewTraceContext creates a new trace context with a correlation ID.
func NewTraceContext(operation string) *TraceContext {
	return &TraceContext{
		CorrelationID: generateCorrelationID(),
		Operation:     operation,
		StartTime:     time.Now(),
		Metadata:      make(map[string]string),
	}
}

// WithMetadata adds metadata to the trace context.
func (tc *TraceContext) WithMetadata(key, value string) *TraceContext {
	if tc.Metadata == nil {
		tc.Metadata = make(map[string]string)
	}
	tc.Metadata[key] = value
	return tc
}

// Duration returns the elapsed time since the trace context was created.
func (tc *TraceContext) Duration() time.Duration {
	return time.Since(tc.StartTime)
}

// ToLogFields converts the trace context to structured log fields.
func (tc *TraceContext) ToLogFields() map[string]interface{} {
	fields := map[string]interface{}{
		"correlation_id": tc.CorrelationID,
		"operation":      tc.Operation,
		"duration_ms":    tc.Duration().Milliseconds(),
	}
	for k, v := range tc.Metadata {
		fields["meta_"+k] = v
	}
	return fields
}

// NewContextWithTrace creates a new context carrying the trace.
func NewContextWithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, CorrelationIDKey{}, trace)
}

// TraceFromContext retrieves a trace context previously attached with
// NewContextWithTrace, or nil if none is present.
func TraceFromContext(ctx context.Context) *TraceContext {
	if trace, ok := ctx.Value(CorrelationIDKey{}).(*TraceContext); ok {
		return trace
	}
	return nil
}

// LogError logs a structured error with correlation fields and, when err is
// an errors.Envelope, its error code.
func (l *Logger) LogError(ctx context.Context, err error, message string) {
	trace := TraceFromContext(ctx)
	if trace == nil {
		trace = NewTraceContext("unknown")
	}

	logEvent := l.Error()
	for k, v := range trace.ToLogFields() {
		logEvent = logEvent.Interface(k, v)
	}

	var code string
	if envelope, ok := err.(errors.Envelope); ok {
		code = envelope.Code
	}

	logEvent.Err(err).Str("error_code", code).Msg(message)
}

// LogOperation logs the start, duration, and outcome of fn under the given
// operation name, creating a trace context if ctx does not already carry one.
func (l *Logger) LogOperation(ctx context.Context, operation string, fn func() error) error {
	trace := TraceFromContext(ctx)
	if trace == nil {
		trace = NewTraceContext(operation)
		ctx = NewContextWithTrace(ctx, trace)
	}

	opLogger := l.WithContext(trace.ToLogFields())
	opLogger.Info().Str("phase", "start").Msg(fmt.Sprintf("starting %s", operation))

	start := time.Now()
	err := fn()
	duration := time.Since(start)

	if err != nil {
		opLogger.Error().Err(err).Str("phase", "error").Dur("duration", duration).
			Msg(fmt.Sprintf("%s failed", operation))
		l.LogError(ctx, err, fmt.Sprintf("%s failed", operation))
	} else {
		opLogger.Info().Str("phase", "complete").Dur("duration", duration).
			Msg(fmt.Sprintf("%s complete", operation))
	}
	return err
}

func generateCorrelationID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("corr_%d", time.Now().UnixNano())
	}
	return "corr_" + hex.EncodeToString(b)
}
