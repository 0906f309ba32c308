package config

import (
	"os"

	"github.com/objectiveSquid/Chat-site/internal/cli/output"
	"github.com/objectiveSquid/Chat-site/pkg/config"
	"github.com/spf13/cobra"
)

var (
	showOutput string
	showShared bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the current chat server configuration.

By default outputs YAML format. Use --output to change format, and
--shared to display the shared packet configuration instead of the
server one.

Examples:
  # Show the server config as YAML
  chatserver config show

  # Show as JSON
  chatserver config show --output json

  # Show the shared packet config
  chatserver config show --shared`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
	showCmd.Flags().BoolVar(&showShared, "shared", false, "Show the shared packet configuration")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	// Load whichever document was asked for, resolving paths through the
	// root's persistent flags.
	var doc any
	if showShared {
		sharedPath, _ := cmd.Flags().GetString("shared-config")
		cfg, err := config.MustLoadShared(sharedPath)
		if err != nil {
			return err
		}
		doc = cfg
	} else {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.MustLoadServer(configPath)
		if err != nil {
			return err
		}
		doc = cfg
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, doc)
	default:
		return output.PrintYAML(os.Stdout, doc)
	}
}
