package config

import (
	"strings"
	"time"

	"github.com/objectiveSquid/Chat-site/internal/duration"
	"github.com/objectiveSquid/Chat-site/pkg/store"
)

// ApplyServerDefaults fills unspecified optional sections of a server
// config. Required keys (database policy, connection) are left untouched
// so validation still catches their absence.
func ApplyServerDefaults(cfg *ServerConfig) {
	cfg.Database.ApplyEngineDefaults()
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)
	applyTelemetryDefaults(&cfg.Telemetry)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = duration.Duration(30 * time.Second)
	}
}

// ApplyClientDefaults fills unspecified optional sections of a client
// config. Connection endpoint and token are required and left untouched.
func ApplyClientDefaults(cfg *ClientConfig) {
	applyLoggingDefaults(&cfg.Logging)

	if cfg.Events.EventIDBytes == 0 {
		cfg.Events.EventIDBytes = 4
	}
	if cfg.GUI.HostAddress == "" {
		cfg.GUI.HostAddress = "127.0.0.1"
	}
	if cfg.GUI.HostPort == 0 {
		cfg.GUI.HostPort = 5000
	}
	if cfg.Connection.RequestTimeout == 0 {
		cfg.Connection.RequestTimeout = duration.Duration(30 * time.Second)
	}
}

// applyLoggingDefaults sets logging defaults and normalizes the level.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyTelemetryDefaults sets OpenTelemetry and Pyroscope defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// GetDefaultSharedConfig returns the documented default header layout.
func GetDefaultSharedConfig() *SharedConfig {
	return &SharedConfig{
		Packets: PacketsConfig{
			TypeBytes:       2,
			IDBytes:         4,
			DataLengthBytes: 4,
		},
	}
}

// GetDefaultServerConfig returns a complete sample server configuration,
// used by `chatserver config init` and tests.
func GetDefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{
		Database: store.Config{
			Type:     store.DatabaseTypeSQLite,
			Filepath: "chat.db",
		},
		Connection: ServerConnectionConfig{
			ListenAddress:         "0.0.0.0",
			ListenPort:            5555,
			AuthenticationTimeout: duration.Duration(10 * time.Second),
		},
	}
	cfg.Database.ApplyDefaults()
	ApplyServerDefaults(cfg)
	return cfg
}

// GetDefaultClientConfig returns a complete sample client configuration,
// used by `chatclient config init` and tests. The token is left empty; the
// server operator issues one via `chatserver user add`.
func GetDefaultClientConfig() *ClientConfig {
	cfg := &ClientConfig{
		Connection: ClientConnectionConfig{
			ConnectAddress:        "127.0.0.1",
			ConnectPort:           5555,
			AuthenticationTimeout: duration.Duration(10 * time.Second),
		},
	}
	ApplyClientDefaults(cfg)
	return cfg
}
