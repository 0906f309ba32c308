package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/objectiveSquid/Chat-site/internal/logger"
	"github.com/objectiveSquid/Chat-site/pkg/store"
	badgerstore "github.com/objectiveSquid/Chat-site/pkg/store/badger"
)

// DetectFormat determines the format of a snapshot file from its content,
// falling back to the file extension. Badger streams have no magic header
// and are only recognized by their .badger extension.
func DetectFormat(path string) (Format, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	header := make([]byte, 16)
	n, err := io.ReadFull(file, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	header = header[:n]

	// SQLite database files start with "SQLite format 3".
	if strings.HasPrefix(string(header), "SQLite format 3") {
		return FormatSQLite, nil
	}

	// pg_dump output starts with SQL comments.
	if strings.HasPrefix(string(header), "--") || strings.HasPrefix(string(header), "/*") {
		return FormatSQL, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	case ".sql":
		return FormatSQL, nil
	case ".badger":
		return FormatBadger, nil
	}

	return "", fmt.Errorf("unable to detect snapshot format for: %s", path)
}

// Restore replaces the configured database with the contents of the
// snapshot at inputPath. The server must be stopped first; restore makes no
// attempt to coordinate with live sessions. The snapshot format must match
// the configured backend.
func Restore(ctx context.Context, cfg *store.Config, inputPath string) (*Summary, error) {
	cfg.ApplyEngineDefaults()

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("snapshot file not found: %s", inputPath)
	}

	format, err := DetectFormat(inputPath)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	switch format {
	case FormatSQLite:
		if cfg.Type != store.DatabaseTypeSQLite {
			return nil, fmt.Errorf("cannot restore a SQLite snapshot into a %s database", cfg.Type)
		}
		if err := restoreSQLite(inputPath, cfg.Filepath); err != nil {
			return nil, err
		}
	case FormatSQL:
		if cfg.Type != store.DatabaseTypePostgres {
			return nil, fmt.Errorf("cannot restore a PostgreSQL SQL dump into a %s database", cfg.Type)
		}
		if err := restorePostgres(ctx, cfg, inputPath); err != nil {
			return nil, err
		}
	case FormatBadger:
		if cfg.Type != store.DatabaseTypeBadger {
			return nil, fmt.Errorf("cannot restore a Badger snapshot into a %s database", cfg.Type)
		}
		if err := restoreBadger(inputPath, cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported snapshot format: %s", format)
	}

	stat, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot file: %w", err)
	}

	summary := &Summary{
		Path:         inputPath,
		DatabaseType: cfg.Type,
		Format:       format,
		Size:         stat.Size(),
		Duration:     time.Since(start),
	}
	logger.Info("Database restored from snapshot",
		"path", summary.Path,
		"type", string(summary.DatabaseType),
		"format", string(summary.Format))
	return summary, nil
}

// restoreSQLite replaces the database file with the snapshot. The WAL and
// journal siblings are removed so stale journal state cannot leak into the
// restored file.
func restoreSQLite(snapshotPath, dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for database file: %w", err)
	}

	for _, suffix := range []string{"", "-journal", "-wal", "-shm"} {
		_ = os.Remove(dbPath + suffix)
	}

	return copyFile(snapshotPath, dbPath)
}

// restorePostgres replays a pg_dump SQL file with psql.
func restorePostgres(ctx context.Context, cfg *store.Config, snapshotPath string) error {
	if _, err := exec.LookPath("psql"); err != nil {
		return fmt.Errorf("psql not found in PATH; install the PostgreSQL client tools first")
	}

	args := []string{
		"-h", cfg.Postgres.Host,
		"-p", fmt.Sprintf("%d", cfg.Postgres.Port),
		"-U", cfg.Postgres.User,
		"-d", cfg.Postgres.Database,
		"-f", snapshotPath,
		"--no-password",
	}

	cmd := exec.CommandContext(ctx, "psql", args...)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+cfg.Postgres.Password)

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("psql restore failed: %w (output: %s)", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// restoreBadger wipes the database directory and replays the backup stream
// into a fresh database.
func restoreBadger(snapshotPath string, cfg *store.Config) error {
	file, err := os.Open(snapshotPath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := os.RemoveAll(cfg.Badger.Dir); err != nil {
		return fmt.Errorf("failed to remove database directory: %w", err)
	}

	st, err := badgerstore.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to recreate database: %w", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.Load(file); err != nil {
		return fmt.Errorf("badger load failed: %w", err)
	}
	return nil
}

// copyFile copies src to dst and syncs the destination.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}

	return out.Sync()
}
