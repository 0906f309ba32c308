// Package backup creates and restores snapshots of the chat database.
//
// Snapshots are plain files: a VACUUM'd copy for SQLite, a pg_dump SQL dump
// for PostgreSQL, and a native backup stream for BadgerDB. SQLite and
// PostgreSQL snapshots are safe while the server runs; Badger snapshots open
// the database directory themselves and need the server stopped, since
// Badger holds an exclusive directory lock. Restore detects the format from
// file content (falling back to the extension) and refuses to load a
// snapshot into a different backend. Snapshot files can optionally be
// shipped to and fetched from an S3 bucket.
package backup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/objectiveSquid/Chat-site/internal/logger"
	"github.com/objectiveSquid/Chat-site/pkg/store"
	badgerstore "github.com/objectiveSquid/Chat-site/pkg/store/badger"
)

// Format identifies the on-disk layout of a snapshot file.
type Format string

const (
	// FormatSQLite is a SQLite database file produced by VACUUM INTO.
	FormatSQLite Format = "sqlite"
	// FormatSQL is a plain-text SQL dump produced by pg_dump.
	FormatSQL Format = "sql"
	// FormatBadger is a BadgerDB backup stream.
	FormatBadger Format = "badger"
)

// Summary describes a completed snapshot or restore.
type Summary struct {
	// Path is the snapshot file.
	Path string
	// DatabaseType is the backend the snapshot was taken from or loaded into.
	DatabaseType store.DatabaseType
	// Format is the snapshot file format.
	Format Format
	// Size is the snapshot file size in bytes.
	Size int64
	// Duration is how long the operation took.
	Duration time.Duration
}

// Snapshot writes a snapshot of the configured database to outputPath and
// returns a summary. The database may be in use while the snapshot runs.
func Snapshot(ctx context.Context, cfg *store.Config, outputPath string) (*Summary, error) {
	cfg.ApplyEngineDefaults()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	start := time.Now()

	var format Format
	switch cfg.Type {
	case store.DatabaseTypeSQLite:
		if err := snapshotSQLite(ctx, cfg, outputPath); err != nil {
			return nil, err
		}
		format = FormatSQLite
	case store.DatabaseTypePostgres:
		if err := snapshotPostgres(ctx, cfg, outputPath); err != nil {
			return nil, err
		}
		format = FormatSQL
	case store.DatabaseTypeBadger:
		if err := snapshotBadger(ctx, cfg, outputPath); err != nil {
			return nil, err
		}
		format = FormatBadger
	default:
		return nil, fmt.Errorf("unknown database type: %q", cfg.Type)
	}

	stat, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot file: %w", err)
	}

	summary := &Summary{
		Path:         outputPath,
		DatabaseType: cfg.Type,
		Format:       format,
		Size:         stat.Size(),
		Duration:     time.Since(start),
	}
	logger.Info("Database snapshot created",
		"path", summary.Path,
		"type", string(summary.DatabaseType),
		"format", string(summary.Format),
		"size_bytes", summary.Size)
	return summary, nil
}

// snapshotSQLite copies the database with VACUUM INTO, which is safe to run
// while the database is in use and produces a compact single file.
func snapshotSQLite(ctx context.Context, cfg *store.Config, outputPath string) error {
	// Stat the source first so store.New cannot create a fresh empty
	// database at the configured path.
	if _, err := os.Stat(cfg.Filepath); os.IsNotExist(err) {
		return fmt.Errorf("source database not found: %s", cfg.Filepath)
	}

	st, err := store.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = st.Close() }()

	// VACUUM INTO refuses to overwrite; remove a stale target from an
	// earlier failed run.
	_ = os.Remove(outputPath)

	sql := fmt.Sprintf("VACUUM INTO '%s'", outputPath)
	if err := st.DB().WithContext(ctx).Exec(sql).Error; err != nil {
		return fmt.Errorf("VACUUM INTO failed: %w", err)
	}
	return nil
}

// snapshotPostgres dumps the database with pg_dump. The password travels in
// the child's environment, never on the command line.
func snapshotPostgres(ctx context.Context, cfg *store.Config, outputPath string) error {
	if _, err := exec.LookPath("pg_dump"); err != nil {
		return fmt.Errorf("pg_dump not found in PATH; install the PostgreSQL client tools first")
	}

	args := []string{
		"-h", cfg.Postgres.Host,
		"-p", fmt.Sprintf("%d", cfg.Postgres.Port),
		"-U", cfg.Postgres.User,
		"-d", cfg.Postgres.Database,
		"-f", outputPath,
		"--no-password",
	}

	cmd := exec.CommandContext(ctx, "pg_dump", args...)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+cfg.Postgres.Password)

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("pg_dump failed: %w (output: %s)", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// snapshotBadger streams the database in Badger's native backup format.
// Opening the directory takes Badger's exclusive lock, so the server must
// be stopped. Streams carry no magic header; restore identifies them by the
// file extension, and SnapshotFileName picks a suitable one.
func snapshotBadger(_ context.Context, cfg *store.Config, outputPath string) error {
	if _, err := os.Stat(cfg.Badger.Dir); os.IsNotExist(err) {
		return fmt.Errorf("source database not found: %s", cfg.Badger.Dir)
	}

	st, err := badgerstore.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = st.Close() }()

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := st.Backup(file, 0); err != nil {
		return fmt.Errorf("badger backup failed: %w", err)
	}
	return file.Sync()
}

// SnapshotFileName returns a timestamped default file name for a snapshot
// of the given backend, with an extension DetectFormat can identify.
func SnapshotFileName(dbType store.DatabaseType, now time.Time) string {
	stamp := now.Format("20060102-150405")
	switch dbType {
	case store.DatabaseTypePostgres:
		return fmt.Sprintf("chat-%s.sql", stamp)
	case store.DatabaseTypeBadger:
		return fmt.Sprintf("chat-%s.badger", stamp)
	default:
		return fmt.Sprintf("chat-%s.db", stamp)
	}
}

// Target returns a human-readable identifier of the configured database,
// for confirmation prompts and summaries.
func Target(cfg *store.Config) string {
	switch cfg.Type {
	case store.DatabaseTypeSQLite:
		return cfg.Filepath
	case store.DatabaseTypePostgres:
		return fmt.Sprintf("%s@%s:%d/%s", cfg.Postgres.User, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.Database)
	case store.DatabaseTypeBadger:
		return cfg.Badger.Dir
	default:
		return string(cfg.Type)
	}
}
