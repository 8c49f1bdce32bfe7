package user

import (
	"os"

	"github.com/corefs/docfs/cmd/dfsctl/cmdutil"
	"github.com/corefs/docfs/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	editEmail       string
	editDisplayName string
	editRole        string
	editEnabled     string
)

var editCmd = &cobra.Command{
	Use:   "edit <username>",
	Short: "Edit an admin operator account",
	Long: `Edit fields of an existing admin operator account.

Only flags that are explicitly set are applied.

Examples:
  # Change a user's role
  dfsctl user edit alice --role admin

  # Disable a user
  dfsctl user edit alice --enabled false`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editEmail, "email", "", "New email address")
	editCmd.Flags().StringVar(&editDisplayName, "display-name", "", "New display name")
	editCmd.Flags().StringVar(&editRole, "role", "", "New role (admin|operator)")
	editCmd.Flags().StringVar(&editEnabled, "enabled", "", "Enable or disable the account (true|false)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	username := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	req := &apiclient.UpdateUserRequest{}
	if editEmail != "" {
		req.Email = &editEmail
	}
	if editDisplayName != "" {
		req.DisplayName = &editDisplayName
	}
	if editRole != "" {
		req.Role = &editRole
	}
	if editEnabled != "" {
		enabled := editEnabled == "true"
		req.Enabled = &enabled
	}

	updated, err := client.UpdateUser(username, req)
	if err != nil {
		return err
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, updated, "User '"+updated.Username+"' updated successfully")
}
