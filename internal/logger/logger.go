// Package logger is the process-wide structured logger for the chat
// binaries, built on log/slog. It renders colorized key=value text on
// terminals, plain text or JSON elsewhere, and can prepend the session
// fields carried in a context to every record.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Config selects the level, format, and destination of log output.
type Config struct {
	Level  string // DEBUG, INFO, WARN, or ERROR
	Format string // text or json
	Output string // stdout, stderr, or a file path
}

var (
	// minLevel holds the active slog.Level. Logging functions consult it
	// before touching the handler so filtered records cost no lock.
	minLevel   atomic.Int32
	jsonOutput atomic.Bool

	mu       sync.RWMutex
	slogger  *slog.Logger
	output   io.Writer = os.Stdout
	useColor bool      = true
)

func init() {
	minLevel.Store(int32(slog.LevelInfo))
	if f, ok := output.(*os.File); ok {
		useColor = colorEnabled(f)
	}
	reconfigure()
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	}
	return 0, false
}

func levelEnabled(l slog.Level) bool {
	return l >= slog.Level(minLevel.Load())
}

// reconfigure rebuilds the handler from the current level, format, and
// output settings. Tests swap the output writer and call this directly.
func reconfigure() {
	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{Level: slog.Level(minLevel.Load())}
	if jsonOutput.Load() {
		slogger = slog.New(slog.NewJSONHandler(output, opts))
	} else {
		slogger = slog.New(NewConsoleHandler(output, opts, useColor))
	}
}

// Init applies cfg to the process-wide logger. Empty or unknown values
// leave the corresponding setting untouched.
func Init(cfg Config) error {
	if cfg.Output != "" {
		w, color, err := openOutput(cfg.Output)
		if err != nil {
			return err
		}
		mu.Lock()
		output = w
		useColor = color
		mu.Unlock()
	}
	if l, ok := parseLevel(cfg.Level); ok {
		minLevel.Store(int32(l))
	}
	storeFormat(cfg.Format)
	reconfigure()
	return nil
}

// openOutput resolves a configured output name to a writer. File outputs
// open in append mode and never get color codes.
func openOutput(name string) (io.Writer, bool, error) {
	switch strings.ToLower(name) {
	case "stdout":
		return os.Stdout, colorEnabled(os.Stdout), nil
	case "stderr":
		return os.Stderr, colorEnabled(os.Stderr), nil
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open log file %q: %w", name, err)
	}
	return f, false, nil
}

func storeFormat(format string) {
	switch strings.ToLower(format) {
	case "json":
		jsonOutput.Store(true)
	case "text":
		jsonOutput.Store(false)
	}
}

// InitWithWriter points the logger at an arbitrary writer, primarily for
// tests that capture output.
func InitWithWriter(w io.Writer, level, format string, enableColor bool) {
	mu.Lock()
	output = w
	useColor = enableColor
	mu.Unlock()

	if l, ok := parseLevel(level); ok {
		minLevel.Store(int32(l))
	}
	storeFormat(format)
	reconfigure()
}

// SetLevel changes the minimum level. Unknown names are ignored.
func SetLevel(level string) {
	l, ok := parseLevel(level)
	if !ok {
		return
	}
	minLevel.Store(int32(l))
	reconfigure()
}

// SetFormat switches between "text" and "json" output. Anything else is
// ignored.
func SetFormat(format string) {
	f := strings.ToLower(format)
	if f != "text" && f != "json" {
		return
	}
	storeFormat(f)
	reconfigure()
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// Debug logs at debug level with alternating key/value fields.
func Debug(msg string, args ...any) {
	if !levelEnabled(slog.LevelDebug) {
		return
	}
	current().Debug(msg, args...)
}

// Info logs at info level with alternating key/value fields.
func Info(msg string, args ...any) {
	if !levelEnabled(slog.LevelInfo) {
		return
	}
	current().Info(msg, args...)
}

// Warn logs at warn level with alternating key/value fields.
func Warn(msg string, args ...any) {
	if !levelEnabled(slog.LevelWarn) {
		return
	}
	current().Warn(msg, args...)
}

// Error logs at error level with alternating key/value fields.
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

// DebugCtx logs at debug level, leading with the session fields in ctx.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	if !levelEnabled(slog.LevelDebug) {
		return
	}
	current().Debug(msg, prependContext(ctx, args)...)
}

// InfoCtx logs at info level, leading with the session fields in ctx.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	if !levelEnabled(slog.LevelInfo) {
		return
	}
	current().Info(msg, prependContext(ctx, args)...)
}

// WarnCtx logs at warn level, leading with the session fields in ctx.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	if !levelEnabled(slog.LevelWarn) {
		return
	}
	current().Warn(msg, prependContext(ctx, args)...)
}

// ErrorCtx logs at error level, leading with the session fields in ctx.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	current().Error(msg, prependContext(ctx, args)...)
}

// prependContext expands the LogContext carried by ctx into key/value
// pairs ahead of args, so session fields appear first in every record.
func prependContext(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	fields := [...]struct{ key, value string }{
		{KeyTraceID, lc.TraceID},
		{KeySpanID, lc.SpanID},
		{KeySessionID, lc.SessionID},
		{KeyUsername, lc.Username},
		{KeyPacket, lc.Packet},
		{KeyClientIP, lc.ClientIP},
	}

	out := make([]any, 0, 2*len(fields)+len(args))
	for _, f := range fields {
		if f.value != "" {
			out = append(out, f.key, f.value)
		}
	}
	return append(out, args...)
}

// With returns a child logger that binds args to every record it emits.
func With(args ...any) *slog.Logger {
	return current().With(args...)
}

// Duration reports the time since start in fractional milliseconds, the
// unit used for duration fields throughout the log output.
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
