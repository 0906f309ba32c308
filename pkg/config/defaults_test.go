package config

import (
	"testing"
	"time"

	"github.com/objectiveSquid/Chat-site/pkg/store"
)

func TestGetDefaultSharedConfig(t *testing.T) {
	cfg := GetDefaultSharedConfig()

	if err := ValidateShared(cfg); err != nil {
		t.Fatalf("Default shared config does not validate: %v", err)
	}

	w := cfg.Widths()
	if w.IDBytes != 4 || w.TypeBytes != 2 || w.DataLengthBytes != 4 {
		t.Errorf("Default widths = %+v, want {id:4, type:2, length:4}", w)
	}
}

func TestGetDefaultServerConfig(t *testing.T) {
	cfg := GetDefaultServerConfig()

	if err := ValidateServer(cfg); err != nil {
		t.Fatalf("Default server config does not validate: %v", err)
	}

	if cfg.Database.Type != store.DatabaseTypeSQLite {
		t.Errorf("Default database type = %q, want sqlite", cfg.Database.Type)
	}
	if cfg.Database.TokenLength != store.DefaultTokenLength {
		t.Errorf("Default token_length = %d, want %d", cfg.Database.TokenLength, store.DefaultTokenLength)
	}
	if cfg.Connection.AuthenticationTimeout.Std() != 10*time.Second {
		t.Errorf("Default authentication_timeout = %v, want 10s", cfg.Connection.AuthenticationTimeout.Std())
	}
	if cfg.ShutdownTimeout.Std() != 30*time.Second {
		t.Errorf("Default shutdown_timeout = %v, want 30s", cfg.ShutdownTimeout.Std())
	}
	if cfg.Telemetry.Enabled {
		t.Error("Telemetry should be disabled by default")
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("Default sample_rate = %v, want 1.0", cfg.Telemetry.SampleRate)
	}
}

func TestGetDefaultClientConfig(t *testing.T) {
	cfg := GetDefaultClientConfig()

	// The sample client config deliberately ships without a token; the
	// operator fills one in after `chatserver user add`.
	if err := ValidateClient(cfg); err == nil {
		t.Error("Default client config should fail validation until a token is set")
	}

	cfg.User.Token = "issued"
	if err := ValidateClient(cfg); err != nil {
		t.Fatalf("Client config with token does not validate: %v", err)
	}

	if cfg.Events.EventIDBytes != 4 {
		t.Errorf("Default event_id_bytes = %d, want 4", cfg.Events.EventIDBytes)
	}
	if cfg.GUI.Addr() != "127.0.0.1:5000" {
		t.Errorf("Default GUI addr = %q, want 127.0.0.1:5000", cfg.GUI.Addr())
	}
	if cfg.Connection.RequestTimeout.Std() != 30*time.Second {
		t.Errorf("Default request_timeout = %v, want 30s", cfg.Connection.RequestTimeout.Std())
	}
}

func TestApplyLoggingDefaults_NormalizesLevel(t *testing.T) {
	cfg := LoggingConfig{Level: "debug"}
	applyLoggingDefaults(&cfg)

	if cfg.Level != "DEBUG" {
		t.Errorf("Level = %q, want DEBUG", cfg.Level)
	}
	if cfg.Format != "text" || cfg.Output != "stdout" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestApplyMetricsDefaults(t *testing.T) {
	disabled := MetricsConfig{}
	applyMetricsDefaults(&disabled)
	if disabled.Port != 0 {
		t.Errorf("Disabled metrics should not get a port, got %d", disabled.Port)
	}

	enabled := MetricsConfig{Enabled: true}
	applyMetricsDefaults(&enabled)
	if enabled.Port != 9090 {
		t.Errorf("Enabled metrics port = %d, want 9090", enabled.Port)
	}
}
