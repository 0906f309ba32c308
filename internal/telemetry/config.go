package telemetry

// Config holds the tracing settings: where to export spans and how many
// to sample.
type Config struct {
	// Enabled turns span collection on. Everything in this package is a
	// no-op while false.
	Enabled bool

	// ServiceName identifies this process in the trace backend.
	ServiceName string

	// ServiceVersion is reported alongside the service name.
	ServiceVersion string

	// Endpoint is the OTLP gRPC collector address, host:port.
	Endpoint string

	// Insecure skips TLS on the collector connection.
	Insecure bool

	// SampleRate keeps this fraction of traces, from 0 (none) to 1 (all).
	SampleRate float64
}

// DefaultConfig returns the disabled baseline: local collector, full
// sampling once enabled.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "chatserver",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
}
