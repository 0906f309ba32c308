// Package user implements account management commands for chatserver.
package user

import (
	"context"
	"fmt"

	"github.com/objectiveSquid/Chat-site/pkg/config"
	"github.com/objectiveSquid/Chat-site/pkg/store"
	"github.com/spf13/cobra"
)

// Cmd is the parent command for account management.
var Cmd = &cobra.Command{
	Use:   "user",
	Short: "Account management",
	Long: `Manage chat accounts directly in the server's database.

Accounts authenticate with a token, not a password. Adding a user prints
the token exactly once; only its SHA-512 hash is stored.

These commands open the database configured in server_config.yml, so run
them on the host that owns it.

Examples:
  # Create an account and print its token
  chatserver user add alice

  # List all accounts
  chatserver user list

  # Delete an account
  chatserver user delete alice`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(deleteCmd)
}

// openStore loads the server configuration referenced by the root --config
// flag and opens the configured backend with its schema ensured. The caller
// owns the returned store.
func openStore(ctx context.Context, cmd *cobra.Command) (store.Store, *config.ServerConfig, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.MustLoadServer(configPath)
	if err != nil {
		return nil, nil, err
	}

	st, err := config.OpenStore(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := st.EnsureTables(ctx); err != nil {
		_ = st.Close()
		return nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return st, cfg, nil
}
