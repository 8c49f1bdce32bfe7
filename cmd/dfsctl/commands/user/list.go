package user

import (
	"os"

	"github.com/corefs/docfs/cmd/dfsctl/cmdutil"
	"github.com/corefs/docfs/pkg/apiclient"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List admin operator accounts",
	Long: `List all admin operator accounts registered with the coordinator.

Examples:
  # List as a table
  dfsctl user list

  # List as JSON
  dfsctl user list -o json`,
	RunE: runList,
}

// UserList wraps a slice of users for table rendering.
type UserList []apiclient.User

// Headers implements output.TableRenderer.
func (ul UserList) Headers() []string {
	return []string{"USERNAME", "ROLE", "ENABLED", "MUST CHANGE PASSWORD"}
}

// Rows implements output.TableRenderer.
func (ul UserList) Rows() [][]string {
	rows := make([][]string, 0, len(ul))
	for _, u := range ul {
		rows = append(rows, []string{
			u.Username,
			u.Role,
			cmdutil.BoolToYesNo(u.Enabled),
			cmdutil.BoolToYesNo(u.MustChangePassword),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	users, err := client.ListUsers()
	if err != nil {
		return err
	}

	return cmdutil.PrintOutput(os.Stdout, users, len(users) == 0, "No users found.", UserList(users))
}
