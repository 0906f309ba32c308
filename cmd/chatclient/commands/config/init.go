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
	Long: `Write sample client_config.yml and shared_config.yml files.

The files are created in the working directory unless --config and
--shared-config point elsewhere. Existing files are left alone unless
--force is given.

The sample leaves 'user.token' empty: the server operator issues a token
with 'chatserver user add' and it goes in there. The shared file must be
byte-for-byte the one the server uses.

Examples:
  # Write sample files into the working directory
  chatclient config init

  # Write to custom paths
  chatclient config init --config ~/chat/client_config.yml --shared-config ~/chat/shared_config.yml

  # Overwrite existing files
  chatclient config init --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config files")
}

func runInit(cmd *cobra.Command, args []string) error {
	clientPath, _ := cmd.Flags().GetString("config")
	if clientPath == "" {
		clientPath = config.ClientConfigFile
	}
	sharedPath, _ := cmd.Flags().GetString("shared-config")
	if sharedPath == "" {
		sharedPath = config.SharedConfigFile
	}

	for _, path := range []string{clientPath, sharedPath} {
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
		}
	}

	if err := config.SaveClientConfig(config.GetDefaultClientConfig(), clientPath); err != nil {
		return fmt.Errorf("failed to write client config: %w", err)
	}
	if err := config.SaveSharedConfig(config.GetDefaultSharedConfig(), sharedPath); err != nil {
		return fmt.Errorf("failed to write shared config: %w", err)
	}

	fmt.Printf("Configuration files created:\n")
	fmt.Printf("  %s\n", clientPath)
	fmt.Printf("  %s\n", sharedPath)
	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Ask the server operator for a token and put it under 'user.token' in %s\n", clientPath)
	fmt.Printf("  2. Replace %s with the server's copy if the defaults were changed\n", sharedPath)
	fmt.Println("  3. Connect with: chatclient connect")
	return nil
}
