package duration

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"5", 5 * time.Second, false},
		{"0", 0, false},
		{"2.5", 2500 * time.Millisecond, false},
		{"30s", 30 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"100ms", 100 * time.Millisecond, false},
		{"", 0, true},
		{"abc", 0, true},
		{"5x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got.Std() != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got.Std(), tt.want)
			}
		})
	}
}

func TestMarshalYAMLRoundTrip(t *testing.T) {
	d := FromSeconds(90)

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	s, ok := marshaled.(string)
	if !ok {
		t.Fatalf("MarshalYAML() = %T, want string", marshaled)
	}
	if s != "1m30s" {
		t.Errorf("MarshalYAML() = %q, want %q", s, "1m30s")
	}

	parsed, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", s, err)
	}
	if parsed != d {
		t.Errorf("round trip changed value: %v -> %v", d, parsed)
	}
}

func TestUnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("10")); err != nil {
		t.Fatalf("UnmarshalText(10) error: %v", err)
	}
	if d.Std() != 10*time.Second {
		t.Errorf("UnmarshalText(10) = %v, want 10s", d.Std())
	}

	if err := d.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("UnmarshalText(bogus) expected error")
	}
}
