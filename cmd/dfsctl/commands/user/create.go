package user

import (
	"os"

	"github.com/corefs/docfs/cmd/dfsctl/cmdutil"
	"github.com/corefs/docfs/internal/cli/prompt"
	"github.com/corefs/docfs/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	createUsername string
	createPassword string
	createEmail    string
	createRole     string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin operator account",
	Long: `Create a new admin operator account on the coordinator.

Examples:
  # Create interactively
  dfsctl user create

  # Create with flags
  dfsctl user create --username alice --password secret --role admin`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createUsername, "username", "u", "", "Username (prompts if not provided)")
	createCmd.Flags().StringVarP(&createPassword, "password", "p", "", "Password (prompts if not provided)")
	createCmd.Flags().StringVar(&createEmail, "email", "", "Email address")
	createCmd.Flags().StringVar(&createRole, "role", "operator", "Role (admin|operator)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	username := createUsername
	if username == "" {
		username, err = prompt.InputRequired("Username")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	password := createPassword
	if password == "" {
		password, err = prompt.PasswordWithConfirmation("Password", "Confirm password", 8)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	req := &apiclient.CreateUserRequest{
		Username: username,
		Password: password,
		Email:    createEmail,
		Role:     createRole,
	}

	created, err := client.CreateUser(req)
	if err != nil {
		return err
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, created, "User '"+created.Username+"' created successfully")
}
