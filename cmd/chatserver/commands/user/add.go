package user

import (
	"context"
	"fmt"
	"os"

	"github.com/objectiveSquid/Chat-site/internal/cli/output"
	"github.com/objectiveSquid/Chat-site/pkg/models"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create an account",
	Long: `Create a chat account and print its token.

The token is generated server-side and shown exactly once: only its hash
is stored, so it cannot be recovered later. Hand it to the account owner,
who puts it under 'user.token' in client_config.yml.

Examples:
  # Create an account
  chatserver user add alice`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	username := args[0]
	ctx := context.Background()

	st, cfg, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	token, result, err := st.AddUser(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}
	switch result {
	case models.AddUserTooShort:
		return fmt.Errorf("username %q is too short (minimum %d characters)", username, cfg.Database.MinUsernameLength)
	case models.AddUserTooLong:
		return fmt.Errorf("username %q is too long (maximum %d characters)", username, cfg.Database.MaxUsernameLength)
	}

	if err := output.KeyValueTable(os.Stdout, [][2]string{
		{"Username", username},
		{"Token", token},
	}); err != nil {
		return err
	}
	fmt.Println("\nSave this token now. Only its hash is stored; it cannot be shown again.")
	return nil
}
