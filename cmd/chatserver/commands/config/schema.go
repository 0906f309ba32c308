package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/objectiveSquid/Chat-site/pkg/config"
	"github.com/spf13/cobra"
)

var (
	schemaOutput string
	schemaFile   string
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schema for configuration",
	Long: `Emit a JSON schema describing one of the server's configuration
documents, for IDE autocompletion and config validation.

Examples:
  chatserver config schema                    # server_config.yml schema
  chatserver config schema --file shared      # shared_config.yml schema
  chatserver config schema -o server.schema.json`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "Output file (default: stdout)")
	schemaCmd.Flags().StringVar(&schemaFile, "file", "server", "Which document to describe (server|shared)")
}

func runSchema(cmd *cobra.Command, args []string) error {
	schema, err := reflectSchema(schemaFile)
	if err != nil {
		return err
	}

	raw, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if schemaOutput == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return nil
	}
	if err := os.WriteFile(schemaOutput, raw, 0644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "JSON schema written to %s\n", schemaOutput)
	return nil
}

func reflectSchema(doc string) (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var schema *jsonschema.Schema
	switch doc {
	case "server":
		schema = reflector.Reflect(&config.ServerConfig{})
		schema.Title = "Chat server configuration"
		schema.Description = "Configuration schema for server_config.yml"
	case "shared":
		schema = reflector.Reflect(&config.SharedConfig{})
		schema.Title = "Shared packet configuration"
		schema.Description = "Configuration schema for shared_config.yml"
	default:
		return nil, fmt.Errorf("invalid --file: %s (valid: server, shared)", doc)
	}
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	return schema, nil
}
