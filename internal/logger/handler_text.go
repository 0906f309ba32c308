package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ANSI escapes for the colorized text format.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// textSink serializes writes from every handler clone sharing it, so
// records from concurrent sessions never interleave mid-line.
type textSink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *textSink) write(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(line)
	return err
}

// ConsoleHandler is a slog.Handler that renders records as
// "[timestamp] [LEVEL] message key=value ...", colorizing the level and
// keys when the destination is a terminal. Groups become dotted key
// prefixes rather than nesting.
type ConsoleHandler struct {
	sink     *textSink
	level    slog.Leveler // nil means info
	attrs    []slog.Attr
	prefix   string
	useColor bool
}

// NewConsoleHandler returns a handler writing to w. A nil opts leaves
// the level at the default.
func NewConsoleHandler(w io.Writer, opts *slog.HandlerOptions, useColor bool) *ConsoleHandler {
	h := &ConsoleHandler{
		sink:     &textSink{w: w},
		useColor: useColor,
	}
	if opts != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled reports whether records at level would be written.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.level != nil {
		min = h.level.Level()
	}
	return level >= min
}

// Handle renders r into a single line and writes it.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	line := make([]byte, 0, 160)

	line = append(line, '[')
	// Millisecond precision; frame timing matters when debugging the wire
	line = r.Time.AppendFormat(line, "2006-01-02 15:04:05.000")
	line = append(line, "] ["...)
	line = h.appendLevel(line, r.Level)
	line = append(line, "] "...)
	line = append(line, r.Message...)

	for _, a := range h.attrs {
		line = h.appendAttr(line, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		line = h.appendAttr(line, a)
		return true
	})

	line = append(line, '\n')
	return h.sink.write(line)
}

func (h *ConsoleHandler) appendLevel(line []byte, level slog.Level) []byte {
	name, color := levelTag(level)
	if !h.useColor {
		return append(line, name...)
	}
	line = append(line, color...)
	line = append(line, name...)
	return append(line, colorReset...)
}

func levelTag(level slog.Level) (name, color string) {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG", colorGray
	case level < slog.LevelWarn:
		return "INFO", colorGreen
	case level < slog.LevelError:
		return "WARN", colorYellow
	default:
		return "ERROR", colorRed
	}
}

func (h *ConsoleHandler) appendAttr(line []byte, a slog.Attr) []byte {
	if a.Equal(slog.Attr{}) {
		return line
	}
	a.Value = a.Value.Resolve()

	line = append(line, ' ')
	if h.useColor {
		line = append(line, colorCyan...)
		line = append(line, h.prefix...)
		line = append(line, a.Key...)
		line = append(line, colorReset...)
	} else {
		line = append(line, h.prefix...)
		line = append(line, a.Key...)
	}
	line = append(line, '=')
	return append(line, formatValue(a.Value)...)
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', 3, 64)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		return fmt.Sprintf("%v", v.Any())
	default:
		return v.String()
	}
}

// clone copies the handler; the sink is shared so clones still serialize
// their writes against each other.
func (h *ConsoleHandler) clone() *ConsoleHandler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	return &c
}

// WithAttrs returns a handler that writes attrs, qualified by the current
// group prefix, on every record.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, a := range attrs {
		c.attrs = append(c.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return c
}

// WithGroup returns a handler whose attr keys gain a "name." prefix.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if strings.TrimSpace(name) == "" {
		return h
	}
	c := h.clone()
	c.prefix = h.prefix + name + "."
	return c
}
