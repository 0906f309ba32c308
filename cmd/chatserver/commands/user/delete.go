package user

import (
	"context"
	"fmt"

	"github.com/objectiveSquid/Chat-site/internal/cli/output"
	"github.com/objectiveSquid/Chat-site/internal/cli/prompt"
	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete an account",
	Long: `Delete a chat account.

The account's relation rows are removed in both directions; message
history is kept. This action is irreversible. You will be prompted for
confirmation unless --force is specified.

Examples:
  # Delete an account with confirmation
  chatserver user delete alice

  # Delete an account without confirmation
  chatserver user delete alice --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	username := args[0]

	confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete user '%s'?", username), deleteForce)
	if err != nil {
		if prompt.IsAborted(err) {
			fmt.Println("\nAborted.")
			return nil
		}
		return err
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	ctx := context.Background()

	st, _, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.DeleteUser(ctx, username); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	output.DefaultPrinter().Success(fmt.Sprintf("User '%s' deleted successfully", username))
	return nil
}
