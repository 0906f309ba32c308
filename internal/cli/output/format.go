// Package output renders command results as tables, JSON, or YAML for the
// chatserver and chatclient admin commands.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Format names an output encoding selected by the --output flag.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat maps a --output flag value to a Format. The empty string
// selects the table format; "yml" is accepted for "yaml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q; pick table, json, or yaml", s)
	}
}

func (f Format) String() string {
	return string(f)
}

// Printer writes command results in one configured format, with optional
// ANSI color for status messages.
type Printer struct {
	out    io.Writer
	format Format
	color  bool
}

// NewPrinter returns a Printer writing to out in the given format.
func NewPrinter(out io.Writer, format Format, color bool) *Printer {
	return &Printer{
		out:    out,
		format: format,
		color:  color,
	}
}

// DefaultPrinter writes tables to stdout with color on.
func DefaultPrinter() *Printer {
	return NewPrinter(os.Stdout, FormatTable, true)
}

// Format reports the printer's configured format.
func (p *Printer) Format() Format {
	return p.format
}

// Print encodes data in the configured format. Table format requires data
// to implement TableSource; other values fall back to JSON so callers
// never lose output to a missing renderer.
func (p *Printer) Print(data any) error {
	switch p.format {
	case FormatJSON:
		return PrintJSON(p.out, data)
	case FormatYAML:
		return PrintYAML(p.out, data)
	case FormatTable:
		if source, ok := data.(TableSource); ok {
			return PrintTable(p.out, source)
		}
		return PrintJSON(p.out, data)
	default:
		return fmt.Errorf("printer holds an unknown format: %s", p.format)
	}
}

// Println writes args as a line, regardless of format.
func (p *Printer) Println(args ...any) {
	_, _ = fmt.Fprintln(p.out, args...)
}

// Printf writes a formatted message, regardless of format.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// stamped writes msg on its own line, wrapped in the ANSI code when color
// is on.
func (p *Printer) stamped(code, msg string) {
	if p.color {
		_, _ = fmt.Fprintf(p.out, "%s%s\033[0m\n", code, msg)
		return
	}
	_, _ = fmt.Fprintln(p.out, msg)
}

// Success prints msg in green.
func (p *Printer) Success(msg string) {
	p.stamped("\033[32m", msg)
}

// Error prints msg in red.
func (p *Printer) Error(msg string) {
	p.stamped("\033[31m", msg)
}

// Warning prints msg in yellow.
func (p *Printer) Warning(msg string) {
	p.stamped("\033[33m", msg)
}
