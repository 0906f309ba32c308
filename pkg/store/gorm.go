package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/objectiveSquid/Chat-site/internal/duration"
	"github.com/objectiveSquid/Chat-site/pkg/models"
)

// DatabaseType selects which backend holds the chat data.
type DatabaseType string

const (
	// DatabaseTypeSQLite is the single-file default.
	DatabaseTypeSQLite DatabaseType = "sqlite"

	// DatabaseTypePostgres targets an external PostgreSQL server.
	DatabaseTypePostgres DatabaseType = "postgres"

	// DatabaseTypeBadger uses BadgerDB. Handled by the badger subpackage;
	// the GORM constructor rejects it.
	DatabaseTypeBadger DatabaseType = "badger"
)

// Default account policy. Applied when the corresponding keys are absent.
const (
	DefaultTokenLength       = 32
	DefaultTokenCharset      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DefaultMinUsernameLength = 3
	DefaultMaxUsernameLength = 20
	DefaultConnectTimeout    = duration.Duration(5 * time.Second)
)

// Engine tuning defaults for the postgres backend.
const (
	defaultPostgresPort = 5432
	defaultSSLMode      = "disable"
	defaultMaxOpenConns = 25
	defaultMaxIdleConns = 5
)

// PostgresConfig carries the connection settings for the postgres
// backend.
type PostgresConfig struct {
	Host         string `mapstructure:"host" yaml:"host"`
	Port         int    `mapstructure:"port" yaml:"port"`
	Database     string `mapstructure:"database" yaml:"database"`
	User         string `mapstructure:"user" yaml:"user"`
	Password     string `mapstructure:"password" yaml:"password"`
	SSLMode      string `mapstructure:"sslmode" yaml:"sslmode"` // disable, require, verify-ca, verify-full
	MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
}

// DSN assembles the keyword/value connection string pgx expects.
func (c *PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s",
		c.User, c.Password, c.Host, c.Port, c.Database)
	if c.SSLMode != "" {
		dsn += " sslmode=" + c.SSLMode
	}
	return dsn
}

// BadgerConfig contains BadgerDB-specific configuration.
type BadgerConfig struct {
	// Dir is the directory holding the BadgerDB value log and tables.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// Config contains database configuration. The flat keys mirror the server
// config file's database section; backend-specific settings nest below.
type Config struct {
	Type DatabaseType `mapstructure:"type" yaml:"type"`

	// Filepath is the path of the SQLite database file.
	Filepath string `mapstructure:"filepath" yaml:"filepath"`

	// ConnectTimeout bounds how long a locked SQLite database is retried
	// before an operation fails. Plain numbers in the file are seconds.
	ConnectTimeout duration.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`

	// Account policy, shared by every backend.
	TokenLength       int    `mapstructure:"token_length" yaml:"token_length"`
	TokenCharset      string `mapstructure:"token_charset" yaml:"token_charset"`
	MinUsernameLength int    `mapstructure:"min_username_length" yaml:"min_username_length"`
	MaxUsernameLength int    `mapstructure:"max_username_length" yaml:"max_username_length"`

	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
	Badger   BadgerConfig   `mapstructure:"badger" yaml:"badger"`
}

// ApplyDefaults fills every unset key, account policy included. Embedders
// that construct a Config in code use this; the file loader does not.
func (c *Config) ApplyDefaults() {
	c.ApplyEngineDefaults()

	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.TokenLength == 0 {
		c.TokenLength = DefaultTokenLength
	}
	if c.TokenCharset == "" {
		c.TokenCharset = DefaultTokenCharset
	}
	if c.MinUsernameLength == 0 {
		c.MinUsernameLength = DefaultMinUsernameLength
	}
	if c.MaxUsernameLength == 0 {
		c.MaxUsernameLength = DefaultMaxUsernameLength
	}
}

// ApplyEngineDefaults fills backend selection and engine tuning defaults
// only. The config file loader uses this instead of ApplyDefaults so that
// required keys (connect timeout, account policy) still fail validation
// when absent from the file.
func (c *Config) ApplyEngineDefaults() {
	if c.Type == "" {
		c.Type = DatabaseTypeSQLite
	}

	if c.Type == DatabaseTypePostgres {
		if c.Postgres.Port == 0 {
			c.Postgres.Port = defaultPostgresPort
		}
		if c.Postgres.SSLMode == "" {
			c.Postgres.SSLMode = defaultSSLMode
		}
		if c.Postgres.MaxOpenConns == 0 {
			c.Postgres.MaxOpenConns = defaultMaxOpenConns
		}
		if c.Postgres.MaxIdleConns == 0 {
			c.Postgres.MaxIdleConns = defaultMaxIdleConns
		}
	}
}

// Validate rejects configurations the selected backend cannot open.
func (c *Config) Validate() error {
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.Filepath == "" {
			return fmt.Errorf("database filepath must be set")
		}
	case DatabaseTypePostgres:
		if c.Postgres.Host == "" {
			return fmt.Errorf("postgres host must be set")
		}
		if c.Postgres.Database == "" {
			return fmt.Errorf("postgres database must be set")
		}
		if c.Postgres.User == "" {
			return fmt.Errorf("postgres user must be set")
		}
	case DatabaseTypeBadger:
		if c.Badger.Dir == "" {
			return fmt.Errorf("badger dir must be set")
		}
	default:
		return fmt.Errorf("unknown database type: %q", c.Type)
	}

	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect_timeout must be positive")
	}
	if c.TokenLength <= 0 {
		return fmt.Errorf("token_length must be positive")
	}
	if c.TokenCharset == "" {
		return fmt.Errorf("token_charset must not be empty")
	}
	if c.MinUsernameLength <= 0 {
		return fmt.Errorf("min_username_length must be positive")
	}
	if c.MaxUsernameLength < c.MinUsernameLength {
		return fmt.Errorf("max_username_length must be at least min_username_length")
	}
	return nil
}

// CheckUsername applies the configured length policy to username. Lengths
// count characters, not bytes.
func (c *Config) CheckUsername(username string) models.AddUserResult {
	switch n := utf8.RuneCountInString(username); {
	case n < c.MinUsernameLength:
		return models.AddUserTooShort
	case n > c.MaxUsernameLength:
		return models.AddUserTooLong
	default:
		return models.AddUserSuccess
	}
}

// GORMStore is the relational Store implementation. One codepath serves
// both SQLite and PostgreSQL through their GORM dialectors.
type GORMStore struct {
	db     *gorm.DB
	config *Config
}

var _ Store = (*GORMStore)(nil)

// New creates a relational chat store based on the configuration. The
// connection is opened here; schema creation happens in EnsureTables.
func New(cfg *Config) (*GORMStore, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bad database configuration: %w", err)
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case DatabaseTypeSQLite:
		if dir := filepath.Dir(cfg.Filepath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory for database file: %w", err)
			}
		}
		// WAL lets sessions read while one writes; busy_timeout retries a
		// locked database for the configured connect timeout.
		dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
			cfg.Filepath, cfg.ConnectTimeout.Std().Milliseconds())
		dialector = sqlite.Open(dsn)

	case DatabaseTypePostgres:
		dialector = postgres.Open(cfg.Postgres.DSN())

	default:
		return nil, fmt.Errorf("database type %q is not relational", cfg.Type)
	}

	// GORM's own logging is silenced; the store is instrumented through
	// spans and metrics instead.
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Type == DatabaseTypePostgres {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access the connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	}

	return &GORMStore{
		db:     db,
		config: cfg,
	}, nil
}

// EnsureTables creates or migrates the users, relations, and messages
// tables. Safe to call on every startup.
func (s *GORMStore) EnsureTables(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to run database migration: %w", err)
	}
	return nil
}

// DB exposes the underlying GORM handle for tests and one-off queries.
func (s *GORMStore) DB() *gorm.DB {
	return s.db
}

// Healthcheck pings the database connection.
func (s *GORMStore) Healthcheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access the connection pool: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (s *GORMStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access the connection pool: %w", err)
	}
	return sqlDB.Close()
}

// isUniqueConstraintError matches the duplicate-key message of either
// backend; neither driver exposes a typed error for it.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// convertNotFoundError maps gorm.ErrRecordNotFound to the domain error
// for the entity being looked up.
func convertNotFoundError(err error, notFoundErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundErr
	}
	return err
}
