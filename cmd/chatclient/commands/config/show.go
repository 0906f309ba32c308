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
	Long: `Display the current chat client configuration.

The account token is redacted; it lives only in the config file itself.
By default outputs YAML format. Use --output to change format, and
--shared to display the shared packet configuration instead of the
client one.

Examples:
  # Show the client config as YAML
  chatclient config show

  # Show as JSON
  chatclient config show --output json

  # Show the shared packet config
  chatclient config show --shared`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
	showCmd.Flags().BoolVar(&showShared, "shared", false, "Show the shared packet configuration")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
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
		cfg, err := config.MustLoadClient(configPath)
		if err != nil {
			return err
		}
		// The token is a credential; never echo it back.
		if cfg.User.Token != "" {
			cfg.User.Token = "[redacted]"
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
