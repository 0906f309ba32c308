// Package commands implements the CLI commands for the chat client.
package commands

import (
	configcmd "github.com/objectiveSquid/Chat-site/cmd/chatclient/commands/config"
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

// rootCmd represents the base command. Called without a subcommand it
// connects to the server and serves the local web GUI.
var rootCmd = &cobra.Command{
	Use:   "chatclient",
	Short: "Chat-site client - connect and chat in the browser",
	Long: `chatclient connects to a Chat-site server using the account token from
client_config.yml and serves a local web GUI for chatting: friend lists,
conversations, and message history, all in the browser.

Running chatclient without a subcommand connects and starts the GUI.

Use "chatclient [command] --help" for more information about a command.`,
	Args:          cobra.NoArgs,
	RunE:          runConnect,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI; main.main calls it once and prints any error.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "client config file (default: client_config.yml)")
	rootCmd.PersistentFlags().StringVar(&sharedCfgFile, "shared-config", "", "shared packet config file (default: shared_config.yml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(connectCmd)
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
