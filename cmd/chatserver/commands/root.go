// Package commands implements the CLI commands for the chat server.
package commands

import (
	configcmd "github.com/objectiveSquid/Chat-site/cmd/chatserver/commands/config"
	usercmd "github.com/objectiveSquid/Chat-site/cmd/chatserver/commands/user"
	"github.com/spf13/cobra"
)

// Build metadata, overridden through ldflags by release builds.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Paths from the persistent --config and --shared-config flags. Empty means
// the loader falls back to the default file next to the binary.
var (
	cfgFile       string
	sharedCfgFile string
)

// rootCmd represents the base command. Called without a subcommand it runs
// the server, so `chatserver` alone brings the service up.
var rootCmd = &cobra.Command{
	Use:   "chatserver",
	Short: "Chat-site server - token-authenticated TCP chat",
	Long: `chatserver runs the Chat-site server: a TCP listener speaking a binary
length-prefixed chat protocol. Clients authenticate with an account token
on connect and then exchange messages, friend requests, and relation
queries. Accounts, relations, and message history persist in SQLite,
PostgreSQL, or Badger.

Running chatserver without a subcommand starts the server.

Use "chatserver [command] --help" for more information about a command.`,
	Args:          cobra.NoArgs,
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI; main.main calls it once and prints any error.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "server config file (default: server_config.yml)")
	rootCmd.PersistentFlags().StringVar(&sharedCfgFile, "shared-config", "", "shared packet config file (default: shared_config.yml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(usercmd.Cmd)
	rootCmd.AddCommand(configcmd.Cmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the --config flag value.
func GetConfigFile() string {
	return cfgFile
}

// GetSharedConfigFile returns the --shared-config flag value.
func GetSharedConfigFile() string {
	return sharedCfgFile
}
