// Package duration provides a duration type for configuration fields.
//
// The chat configuration files historically write timeouts as plain
// numbers meaning seconds (connect_timeout: 5). Duration keeps that
// convention readable on disk while exposing time.Duration semantics in
// code: plain numbers parse as seconds, strings accept time.ParseDuration
// forms like "30s" or "1m30s", and YAML output always uses the string form.
package duration

import (
	"fmt"
	"strconv"
	"time"
)

// Duration represents a span of time loaded from configuration.
type Duration time.Duration

// Parse parses a configuration duration value. Bare numbers mean seconds;
// anything else goes through time.ParseDuration.
func Parse(s string) (Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration string")
	}
	if seconds, err := strconv.ParseFloat(s, 64); err == nil {
		return FromSeconds(seconds), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format: %q", s)
	}
	return Duration(d), nil
}

// FromSeconds converts a second count into a Duration.
func FromSeconds(seconds float64) Duration {
	return Duration(seconds * float64(time.Second))
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Seconds returns the duration as a floating point number of seconds.
func (d Duration) Seconds() float64 {
	return time.Duration(d).Seconds()
}

// String returns the time.Duration string form, e.g. "1m30s".
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalYAML writes the duration in string form so saved configuration
// files reload without the plain-number seconds ambiguity.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so the type works
// directly with mapstructure string input.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
