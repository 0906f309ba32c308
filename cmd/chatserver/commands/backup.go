package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/objectiveSquid/Chat-site/pkg/backup"
	"github.com/objectiveSquid/Chat-site/pkg/config"
	"github.com/spf13/cobra"
)

var (
	backupOutput string
	backupUpload bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the chat database",
	Long: `Create a snapshot of the chat database.

For SQLite databases:
  Creates a snapshot using VACUUM INTO (pure Go, no external tools
  needed). Safe to run while the server is up.

For PostgreSQL databases:
  Uses pg_dump, which must be installed. Safe to run while the server
  is up.

For Badger databases:
  Streams the store in Badger's native backup format. Badger holds an
  exclusive directory lock, so the server must be stopped first.

With --upload the snapshot is also shipped to the S3 bucket configured
under backup.s3 in server_config.yml.

Examples:
  # Snapshot to a timestamped file in the working directory
  chatserver backup

  # Snapshot to a specific path
  chatserver backup --output /backups/chat.db

  # Snapshot and ship to S3
  chatserver backup --upload`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "Output file path (default: chat-<timestamp> in the working directory)")
	backupCmd.Flags().BoolVar(&backupUpload, "upload", false, "Upload the snapshot to the configured S3 bucket")
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.MustLoadServer(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg.Logging); err != nil {
		return err
	}

	outputPath := backupOutput
	if outputPath == "" {
		outputPath = backup.SnapshotFileName(cfg.Database.Type, time.Now())
	}

	summary, err := backup.Snapshot(ctx, &cfg.Database, outputPath)
	if err != nil {
		return err
	}

	fmt.Printf("Backup completed successfully\n")
	fmt.Printf("  Output:   %s\n", summary.Path)
	fmt.Printf("  Type:     %s\n", summary.DatabaseType)
	fmt.Printf("  Format:   %s\n", summary.Format)
	fmt.Printf("  Size:     %s\n", formatBytes(summary.Size))
	fmt.Printf("  Duration: %s\n", summary.Duration.Round(time.Millisecond))

	if !backupUpload {
		return nil
	}

	client, err := backup.NewS3Client(ctx, &cfg.Backup.S3)
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}
	key, err := backup.Upload(ctx, client, &cfg.Backup.S3, summary.Path)
	if err != nil {
		return err
	}

	fmt.Printf("\nSnapshot uploaded\n")
	fmt.Printf("  Bucket:   %s\n", cfg.Backup.S3.Bucket)
	fmt.Printf("  Key:      %s\n", key)

	return nil
}
