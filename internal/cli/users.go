package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/painelhub/painelcore/internal/painelsrv/db/models"
)

// usersCmd groups the account administration commands
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Administer panel accounts",
	Long: `Administer panel login accounts: list them, add new ones, change role or
password, and remove them. Passwords are stored as bcrypt hashes and never
displayed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Help()
		return nil
	},
}

// usersListCmd lists every account, newest first
var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		accounts, err := rt.users.ListAccounts(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(toAccountsJSON(accounts))
			return nil
		}
		fmt.Printf("%d accounts\n", len(accounts))
		for _, a := range accounts {
			fmt.Printf("  %-16s %-24s %-6s created %s\n",
				a.Username, a.DisplayName, a.Role, a.CreatedAt.Format(timeLayout))
		}
		return nil
	},
}

// usersAddCmd creates an account
var usersAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create an account",
	Long: `Create a panel account. The role is either admin or user; the password
must have at least 4 characters and is hashed before it is stored.

Example:
  painelctl users add regina --name "Regina Souza" --role admin --passwd=s3cret`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")
		passwd, _ := cmd.Flags().GetString("passwd")

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		account, err := rt.users.CreateAccount(ctx, args[0], name, role, passwd)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(toAccountJSON(*account))
		} else {
			okLabel.Printf("✓ Account %s created (id %d)\n", account.Username, account.ID)
		}
		return nil
	},
}

// usersSetCmd updates an account's role and optionally its password
var usersSetCmd = &cobra.Command{
	Use:   "set <username>",
	Short: "Update an account's role and optionally its password",
	Long: `Update a panel account. The role is always written; the password only
changes when --passwd is given.

Example:
  painelctl users set regina --role user --passwd=n3wpass`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		role, _ := cmd.Flags().GetString("role")
		passwd, _ := cmd.Flags().GetString("passwd")

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.users.UpdateAccount(ctx, args[0], role, passwd); err != nil {
			return err
		}

		if jsonOutput {
			printJSON(map[string]any{"user": args[0], "role": role, "password_changed": passwd != ""})
		} else {
			okLabel.Printf("✓ Account %s updated\n", args[0])
		}
		return nil
	},
}

// usersRmCmd deletes an account
var usersRmCmd = &cobra.Command{
	Use:   "rm <username>",
	Short: "Delete an account",
	Long: `Delete a panel account. Access history is kept: the access log references
products, not accounts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.users.DeleteAccount(ctx, args[0]); err != nil {
			return err
		}

		if jsonOutput {
			printJSON(map[string]string{"deleted": args[0]})
		} else {
			okLabel.Printf("✓ Account %s deleted\n", args[0])
		}
		return nil
	},
}

type accountJSON struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"name"`
	Role        string `json:"role"`
	CreatedAt   string `json:"created_at"`
}

func toAccountJSON(a models.UserAccount) accountJSON {
	return accountJSON{
		ID:          a.ID,
		Username:    a.Username,
		DisplayName: a.DisplayName,
		Role:        a.Role,
		CreatedAt:   a.CreatedAt.Format(timeLayout),
	}
}

func toAccountsJSON(accounts []models.UserAccount) []accountJSON {
	out := make([]accountJSON, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountJSON(a))
	}
	return out
}

func init() {
	usersAddCmd.Flags().String("name", "", "Display name for the account")
	usersAddCmd.Flags().String("role", models.RoleUser, "Account role (admin or user)")
	usersAddCmd.Flags().String("passwd", "", "Password for the account")

	usersSetCmd.Flags().String("role", "", "Account role (admin or user)")
	usersSetCmd.Flags().String("passwd", "", "New password (empty keeps the current one)")
	usersSetCmd.MarkFlagRequired("role")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersSetCmd)
	usersCmd.AddCommand(usersRmCmd)
	rootCmd.AddCommand(usersCmd)
}
