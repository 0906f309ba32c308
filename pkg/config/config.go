// Package config loads, validates, and saves the three chat configuration
// documents: shared_config.yml (wire header widths, must match on both
// peers), server_config.yml, and client_config.yml.
//
// Environment variables prefixed CHATSITE_ override file values key by key.
// Unknown keys in a file are ignored; missing required keys or keys of the
// wrong type abort loading with the offending key named. Timeouts written
// as plain numbers mean seconds; duration strings like "30s" also work.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/objectiveSquid/Chat-site/internal/duration"
	"github.com/objectiveSquid/Chat-site/internal/protocol/chat"
	"github.com/objectiveSquid/Chat-site/pkg/store"
)

// Default config file names, read from the working directory.
const (
	SharedConfigFile = "shared_config.yml"
	ServerConfigFile = "server_config.yml"
	ClientConfigFile = "client_config.yml"
)

// envPrefix namespaces environment variable overrides, e.g.
// CHATSITE_CONNECTION_LISTEN_PORT=6000.
const envPrefix = "CHATSITE"

// ============================================================================
// shared_config.yml
// ============================================================================

// SharedConfig holds settings both peers must agree on.
type SharedConfig struct {
	Packets PacketsConfig `mapstructure:"packets" yaml:"packets"`
}

// PacketsConfig sets the byte widths of the three frame header fields.
// Both peers must load identical values or every frame misparses.
type PacketsConfig struct {
	TypeBytes       int `mapstructure:"packet_type_bytes" yaml:"packet_type_bytes" validate:"required,min=1,max=8"`
	IDBytes         int `mapstructure:"packet_id_bytes" yaml:"packet_id_bytes" validate:"required,min=1,max=8"`
	DataLengthBytes int `mapstructure:"packet_data_length_bytes" yaml:"packet_data_length_bytes" validate:"required,min=1,max=8"`
}

// Widths converts the configured packet field sizes into the wire codec's
// header layout.
func (c *SharedConfig) Widths() chat.Widths {
	return chat.Widths{
		IDBytes:         c.Packets.IDBytes,
		TypeBytes:       c.Packets.TypeBytes,
		DataLengthBytes: c.Packets.DataLengthBytes,
	}
}

// ============================================================================
// server_config.yml
// ============================================================================

// ServerConfig holds the chat server's configuration.
type ServerConfig struct {
	// Database configures the persistence backend and account policy.
	Database store.Config `mapstructure:"database" yaml:"database"`

	// Connection configures the listener and the authentication gate.
	Connection ServerConnectionConfig `mapstructure:"connection" yaml:"connection"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metrics exposes a Prometheus scrape endpoint when enabled.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Telemetry controls OpenTelemetry tracing and Pyroscope profiling.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Backup configures snapshot destinations for `chatserver backup`.
	Backup BackupConfig `mapstructure:"backup" yaml:"backup"`

	// ShutdownTimeout is the maximum time to wait for open sessions to
	// drain on graceful shutdown.
	ShutdownTimeout duration.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required,gt=0"`
}

// ServerConnectionConfig configures the server listener.
type ServerConnectionConfig struct {
	ListenAddress string `mapstructure:"listen_address" yaml:"listen_address" validate:"required"`
	ListenPort    int    `mapstructure:"listen_port" yaml:"listen_port" validate:"required,min=1,max=65535"`

	// AuthenticationTimeout bounds how long a fresh connection may sit
	// silent before its first frame; exceeding it closes the socket.
	AuthenticationTimeout duration.Duration `mapstructure:"authentication_timeout" yaml:"authentication_timeout" validate:"required,gt=0"`
}

// Addr returns the host:port string to listen on.
func (c *ServerConnectionConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.ListenAddress, c.ListenPort)
}

// ============================================================================
// client_config.yml
// ============================================================================

// ClientConfig holds the chat client's configuration.
type ClientConfig struct {
	// Connection configures the server endpoint and timeouts.
	Connection ClientConnectionConfig `mapstructure:"connection" yaml:"connection"`

	// User carries the account token presented during authentication.
	User UserConfig `mapstructure:"user" yaml:"user"`

	// Events configures the input event layer.
	Events EventsConfig `mapstructure:"events" yaml:"events"`

	// GUI configures the local web front end.
	GUI GUIConfig `mapstructure:"gui" yaml:"gui"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// ClientConnectionConfig configures the connection to the server.
type ClientConnectionConfig struct {
	ConnectAddress string `mapstructure:"connect_address" yaml:"connect_address" validate:"required"`
	ConnectPort    int    `mapstructure:"connect_port" yaml:"connect_port" validate:"required,min=1,max=65535"`

	// AuthenticationTimeout bounds the wait for the server's
	// authentication response.
	AuthenticationTimeout duration.Duration `mapstructure:"authentication_timeout" yaml:"authentication_timeout" validate:"required,gt=0"`

	// RequestTimeout bounds each request/response round trip. Zero
	// disables the bound, reproducing the historical hang-forever
	// behavior.
	RequestTimeout duration.Duration `mapstructure:"request_timeout" yaml:"request_timeout" validate:"gte=0"`
}

// Addr returns the host:port string to dial.
func (c *ClientConnectionConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.ConnectAddress, c.ConnectPort)
}

// UserConfig carries the account token.
type UserConfig struct {
	// Token is the plaintext account token. Treat the file as a secret.
	Token string `mapstructure:"token" yaml:"token" validate:"required"`
}

// EventsConfig configures the client's input event layer.
type EventsConfig struct {
	// EventIDBytes is the width of randomly drawn event ids.
	EventIDBytes int `mapstructure:"event_id_bytes" yaml:"event_id_bytes" validate:"required,min=1,max=8"`
}

// GUIConfig configures the local web front end.
type GUIConfig struct {
	HostAddress string `mapstructure:"host_address" yaml:"host_address" validate:"required"`
	HostPort    int    `mapstructure:"host_port" yaml:"host_port" validate:"required,min=1,max=65535"`
}

// Addr returns the host:port string the GUI serves on.
func (c *GUIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.HostAddress, c.HostPort)
}

// ============================================================================
// Shared sections
// ============================================================================

// LoggingConfig is the logging section shared by server and client configs.
type LoggingConfig struct {
	// Level is the minimum log level: DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format is the log output format: text or json.
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output is where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// MetricsConfig is the Prometheus scrape endpoint section. With Enabled
// false no metrics are collected at all.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`
}

// TelemetryConfig is the tracing section: OTLP export plus the nested
// profiling block.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint (host:port).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate is the trace sampling ratio in [0, 1].
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate" validate:"omitempty,gte=0,lte=1"`

	// Profiling enables Pyroscope continuous profiling alongside tracing.
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig is the Pyroscope continuous profiling section.
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server URL.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes selects which profiles to collect.
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// BackupConfig configures snapshot destinations.
type BackupConfig struct {
	S3 S3Config `mapstructure:"s3" yaml:"s3"`
}

// S3Config configures the optional S3 destination for database snapshots.
// Endpoint and UsePathStyle exist for S3-compatible services like MinIO.
type S3Config struct {
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	Region          string `mapstructure:"region" yaml:"region"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	Prefix          string `mapstructure:"prefix" yaml:"prefix"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style" yaml:"use_path_style"`
}

// ============================================================================
// Loading
// ============================================================================

// LoadShared loads and validates shared_config.yml. An empty path means the
// default file name in the working directory.
func LoadShared(path string) (*SharedConfig, error) {
	if path == "" {
		path = SharedConfigFile
	}

	var cfg SharedConfig
	if err := loadDocument(path, &cfg); err != nil {
		return nil, err
	}
	if err := ValidateShared(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadServer loads and validates server_config.yml.
func LoadServer(path string) (*ServerConfig, error) {
	if path == "" {
		path = ServerConfigFile
	}

	var cfg ServerConfig
	if err := loadDocument(path, &cfg); err != nil {
		return nil, err
	}
	ApplyServerDefaults(&cfg)
	if err := ValidateServer(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadClient loads and validates client_config.yml.
func LoadClient(path string) (*ClientConfig, error) {
	if path == "" {
		path = ClientConfigFile
	}

	var cfg ClientConfig
	if err := loadDocument(path, &cfg); err != nil {
		return nil, err
	}
	ApplyClientDefaults(&cfg)
	if err := ValidateClient(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// MustLoadShared is LoadShared with a friendly hint when the file is
// missing entirely.
func MustLoadShared(path string) (*SharedConfig, error) {
	resolved, err := requireFile(path, SharedConfigFile)
	if err != nil {
		return nil, err
	}
	return LoadShared(resolved)
}

// MustLoadServer is LoadServer with a friendly hint when the file is
// missing entirely.
func MustLoadServer(path string) (*ServerConfig, error) {
	resolved, err := requireFile(path, ServerConfigFile)
	if err != nil {
		return nil, err
	}
	return LoadServer(resolved)
}

// MustLoadClient is LoadClient with a friendly hint when the file is
// missing entirely.
func MustLoadClient(path string) (*ClientConfig, error) {
	resolved, err := requireFile(path, ClientConfigFile)
	if err != nil {
		return nil, err
	}
	return LoadClient(resolved)
}

// requireFile resolves the effective path and turns a missing file into an
// actionable error instead of a bare ENOENT.
func requireFile(path, fallback string) (string, error) {
	if path == "" {
		path = fallback
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("configuration file not found: %s\n\n"+
			"Generate the sample configuration files first:\n"+
			"  chatserver config init   (server side)\n"+
			"  chatclient config init   (client side)", path)
	}
	return path, nil
}

// loadDocument reads one YAML document into out with env overrides applied.
func loadDocument(path string, out any) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := v.Unmarshal(out, viper.DecodeHook(configDecodeHooks())); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// configDecodeHooks returns the combined decode hook for custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
	)
}

// durationDecodeHook converts config values into duration.Duration. Plain
// numbers mean seconds (the config files' historical convention); strings
// accept time.ParseDuration forms like "30s".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(duration.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return duration.Parse(v)
		case int:
			return duration.FromSeconds(float64(v)), nil
		case int64:
			return duration.FromSeconds(float64(v)), nil
		case float64:
			return duration.FromSeconds(v), nil
		default:
			return data, nil
		}
	}
}

// ============================================================================
// Saving
// ============================================================================

// SaveSharedConfig writes cfg to path in YAML form.
func SaveSharedConfig(cfg *SharedConfig, path string) error {
	return saveDocument(cfg, path)
}

// SaveServerConfig writes cfg to path in YAML form.
func SaveServerConfig(cfg *ServerConfig, path string) error {
	return saveDocument(cfg, path)
}

// SaveClientConfig writes cfg to path in YAML form.
func SaveClientConfig(cfg *ClientConfig, path string) error {
	return saveDocument(cfg, path)
}

func saveDocument(cfg any, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: client_config.yml carries the account token.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
