package user

import (
	"github.com/corefs/docfs/cmd/dfsctl/cmdutil"
	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete an admin operator account",
	Long: `Delete an admin operator account from the coordinator.

Examples:
  # Delete with confirmation prompt
  dfsctl user delete alice

  # Delete without confirmation
  dfsctl user delete alice --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	username := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	return cmdutil.RunDeleteWithConfirmation("user", username, deleteForce, func() error {
		return client.DeleteUser(username)
	})
}
