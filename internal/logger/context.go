package logger

import (
	"context"
	"time"
)

// ctxKey keys the LogContext inside a context.Context without colliding
// with other packages.
type ctxKey struct{}

// LogContext carries the session fields the *Ctx logging functions
// prepend to every record. A session builds it up as facts become known:
// client IP at accept, session id at creation, username after auth, and
// the packet name per request.
type LogContext struct {
	TraceID   string
	SpanID    string
	SessionID string
	Username  string // empty until authentication succeeds
	Packet    string // packet type name currently being handled
	ClientIP  string // without port
	StartTime time.Time
}

// NewLogContext starts a LogContext for a connection from clientIP,
// stamping the start time used by DurationMs.
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// WithContext stores lc in ctx for the *Ctx logging functions to find.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, lc)
}

// FromContext returns the LogContext in ctx, or nil.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(ctxKey{}).(*LogContext)
	return lc
}

// Clone returns a shallow copy, so derived contexts never mutate the
// original.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	out := *lc
	return &out
}

// WithSession returns a copy carrying the session id.
func (lc *LogContext) WithSession(id string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.SessionID = id
	}
	return clone
}

// WithUsername returns a copy carrying the authenticated username.
func (lc *LogContext) WithUsername(username string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Username = username
	}
	return clone
}

// WithPacket returns a copy carrying the packet type name.
func (lc *LogContext) WithPacket(packet string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Packet = packet
	}
	return clone
}

// WithTrace returns a copy carrying the active trace and span ids.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs reports milliseconds elapsed since the context was created.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
