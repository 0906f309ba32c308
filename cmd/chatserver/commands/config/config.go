// Package config implements configuration management subcommands.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the config subcommand.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Manage the chat server configuration files.

The server reads two documents: server_config.yml (listener, database,
logging, observability) and shared_config.yml (packet header layout,
which every client must load with identical values).

Subcommands:
  init    Write sample configuration files
  show    Display current configuration
  schema  Generate JSON schema for IDE/validation`,
}

func init() {
	Cmd.AddCommand(initCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(schemaCmd)
}
