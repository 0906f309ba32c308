// Package config implements configuration management subcommands.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the config subcommand.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Manage the chat client configuration files.

The client reads two documents: client_config.yml (server endpoint,
account token, GUI listener, logging) and shared_config.yml (packet
header layout, which must match the server's copy exactly).

Subcommands:
  init  Write sample configuration files
  show  Display current configuration`,
}

func init() {
	Cmd.AddCommand(initCmd)
	Cmd.AddCommand(showCmd)
}
