package user

import (
	"fmt"

	"github.com/corefs/docfs/cmd/dfsctl/cmdutil"
	"github.com/corefs/docfs/internal/cli/credentials"
	"github.com/corefs/docfs/internal/cli/prompt"
	"github.com/spf13/cobra"
)

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change your own password",
	Long: `Change the password of the currently authenticated operator account.

Examples:
  # Change password interactively
  dfsctl user change-password`,
	RunE: runChangePassword,
}

func runChangePassword(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	current, err := prompt.Password("Current password")
	if err != nil {
		return cmdutil.HandleAbort(err)
	}

	newPassword, err := prompt.PasswordWithConfirmation("New password", "Confirm password", 8)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}

	tokens, err := client.ChangeOwnPassword(current, newPassword)
	if err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}
	if err := store.UpdateTokens(tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt); err != nil {
		return fmt.Errorf("failed to save refreshed tokens: %w", err)
	}

	cmdutil.PrintSuccess("Password changed successfully")
	return nil
}
