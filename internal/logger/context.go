package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging fields threaded through a single
// client session or node control-channel exchange. It travels in a
// context.Context (see WithContext), not in process-wide state.
type LogContext struct {
	TraceID   string    // OpenTelemetry trace ID, when tracing is enabled
	SpanID    string    // OpenTelemetry span ID, when tracing is enabled
	Opcode    string    // wire opcode name (CREATE, READ, WRITE, HEARTBEAT, ...)
	File      string    // target filename, empty for cluster-level operations
	ClientIP  string    // peer IP address (without port)
	Username  string    // requester, empty before REGISTER_CLIENT completes
	RequestID int32     // wire request_id, for correlating coordinator<->node hops
	StartTime time.Time // for duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext with the given client IP
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:   lc.TraceID,
		SpanID:    lc.SpanID,
		Opcode:    lc.Opcode,
		File:      lc.File,
		ClientIP:  lc.ClientIP,
		Username:  lc.Username,
		RequestID: lc.RequestID,
		StartTime: lc.StartTime,
	}
}

// WithOpcode returns a copy with the opcode and target file set
func (lc *LogContext) WithOpcode(opcode, file string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Opcode = opcode
		clone.File = file
	}
	return clone
}

// WithUser returns a copy with the authenticated username set
func (lc *LogContext) WithUser(username string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Username = username
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
