package config

import (
	"fmt"
	"os"

	"github.com/objectiveSquid/Chat-site/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write sample configuration files",
	Long: `Write sample server_config.yml and shared_config.yml files.

The files are created in the working directory unless --config and
--shared-config point elsewhere. Existing files are left alone unless
--force is given.

The shared file must be distributed to every client verbatim: both peers
parse frames with the byte widths it declares.

Examples:
  # Write sample files into the working directory
  chatserver config init

  # Write to custom paths
  chatserver config init --config /etc/chat/server_config.yml --shared-config /etc/chat/shared_config.yml

  # Overwrite existing files
  chatserver config init --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config files")
}

func runInit(cmd *cobra.Command, args []string) error {
	serverPath, _ := cmd.Flags().GetString("config")
	if serverPath == "" {
		serverPath = config.ServerConfigFile
	}
	sharedPath, _ := cmd.Flags().GetString("shared-config")
	if sharedPath == "" {
		sharedPath = config.SharedConfigFile
	}

	for _, path := range []string{serverPath, sharedPath} {
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
		}
	}

	if err := config.SaveServerConfig(config.GetDefaultServerConfig(), serverPath); err != nil {
		return fmt.Errorf("failed to write server config: %w", err)
	}
	if err := config.SaveSharedConfig(config.GetDefaultSharedConfig(), sharedPath); err != nil {
		return fmt.Errorf("failed to write shared config: %w", err)
	}

	fmt.Printf("Configuration files created:\n")
	fmt.Printf("  %s\n", serverPath)
	fmt.Printf("  %s\n", sharedPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration files to customize your setup")
	fmt.Printf("  2. Copy %s to every client, unchanged\n", sharedPath)
	fmt.Println("  3. Start the server with: chatserver serve")
	return nil
}
