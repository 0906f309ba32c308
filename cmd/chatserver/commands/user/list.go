package user

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/objectiveSquid/Chat-site/internal/cli/output"
	"github.com/spf13/cobra"
)

var listOutput string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all accounts",
	Long: `List all chat accounts.

The FRIENDS column counts confirmed friendships: relations where both
sides accepted. Pending requests are not counted.

Examples:
  # List accounts as table
  chatserver user list

  # List as JSON
  chatserver user list -o json

  # List as YAML
  chatserver user list -o yaml`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// accountRow is one `user list` entry. Token hashes stay out on purpose.
type accountRow struct {
	Username string `json:"username" yaml:"username"`
	Friends  int    `json:"friends" yaml:"friends"`
}

// AccountList renders account rows as a table.
type AccountList []accountRow

// Headers implements output.TableSource.
func (al AccountList) Headers() []string {
	return []string{"USERNAME", "FRIENDS"}
}

// Rows implements output.TableSource.
func (al AccountList) Rows() [][]string {
	rows := make([][]string, 0, len(al))
	for _, row := range al {
		rows = append(rows, []string{row.Username, strconv.Itoa(row.Friends)})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, _, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	users, err := st.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	accounts := make(AccountList, 0, len(users))
	for _, u := range users {
		relations, err := st.AllRelations(ctx, u.Username)
		if err != nil {
			return fmt.Errorf("failed to load relations for %s: %w", u.Username, err)
		}
		friends := 0
		for _, rel := range relations {
			if rel.FirstIsFriend && rel.SecondaryIsFriend {
				friends++
			}
		}
		accounts = append(accounts, accountRow{Username: u.Username, Friends: friends})
	}

	format, err := output.ParseFormat(listOutput)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, accounts)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, accounts)
	default:
		if len(accounts) == 0 {
			fmt.Println("No users found.")
			return nil
		}
		return output.PrintTable(os.Stdout, accounts)
	}
}
