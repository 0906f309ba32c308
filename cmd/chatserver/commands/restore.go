package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/objectiveSquid/Chat-site/internal/cli/prompt"
	"github.com/objectiveSquid/Chat-site/pkg/backup"
	"github.com/objectiveSquid/Chat-site/pkg/config"
	"github.com/spf13/cobra"
)

var (
	restoreInput  string
	restoreFromS3 string
	restoreForce  bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the chat database from a snapshot",
	Long: `Restore the chat database from a snapshot file.

IMPORTANT: The chat server must be stopped before restoring.

Supported snapshot formats:
  - SQLite database files - restored by replacing the database file
  - PostgreSQL SQL dumps  - restored using psql
  - Badger backup streams - replayed into a fresh directory

The format is auto-detected from the file content, with the file
extension as a fallback, and must match the configured backend.

Examples:
  # Restore from a local snapshot
  chatserver restore --input /backups/chat.db

  # Restore without the confirmation prompt
  chatserver restore --input /backups/chat.db --force

  # Fetch a snapshot from the configured S3 bucket and restore it
  chatserver restore --from-s3 snapshots/chat-20250314-150926.db`,
	Args: cobra.NoArgs,
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().StringVarP(&restoreInput, "input", "i", "", "Snapshot file path")
	restoreCmd.Flags().StringVar(&restoreFromS3, "from-s3", "", "S3 object key to download and restore")
	restoreCmd.Flags().BoolVar(&restoreForce, "force", false, "Skip confirmation prompt")
}

func runRestore(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if restoreInput == "" && restoreFromS3 == "" {
		return fmt.Errorf("either --input or --from-s3 is required")
	}
	if restoreInput != "" && restoreFromS3 != "" {
		return fmt.Errorf("--input and --from-s3 are mutually exclusive")
	}

	cfg, err := config.MustLoadServer(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg.Logging); err != nil {
		return err
	}

	inputPath := restoreInput
	if restoreFromS3 != "" {
		client, err := backup.NewS3Client(ctx, &cfg.Backup.S3)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		inputPath = filepath.Join(os.TempDir(), filepath.Base(restoreFromS3))
		if err := backup.Download(ctx, client, &cfg.Backup.S3, restoreFromS3, inputPath); err != nil {
			return err
		}
	}

	format, err := backup.DetectFormat(inputPath)
	if err != nil {
		return err
	}

	if !restoreForce {
		fmt.Printf("WARNING: This will replace the current chat database.\n")
		fmt.Printf("  Database: %s (%s)\n", cfg.Database.Type, backup.Target(&cfg.Database))
		fmt.Printf("  Snapshot: %s (%s format)\n", inputPath, format)
		fmt.Printf("\nMake sure the chat server is stopped before proceeding.\n\n")

		confirmed, err := prompt.ConfirmDanger("Replace the database", "yes")
		if err != nil {
			if prompt.IsAborted(err) {
				fmt.Println("\nAborted.")
				return nil
			}
			return err
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}
	}

	summary, err := backup.Restore(ctx, &cfg.Database, inputPath)
	if err != nil {
		return err
	}

	fmt.Printf("\nRestore completed successfully\n")
	fmt.Printf("  Source:   %s\n", summary.Path)
	fmt.Printf("  Format:   %s\n", summary.Format)
	fmt.Printf("  Target:   %s\n", backup.Target(&cfg.Database))
	fmt.Printf("  Duration: %s\n", summary.Duration.Round(time.Millisecond))

	return nil
}
