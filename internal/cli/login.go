package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Verify panel credentials",
		Long: `Verify a username/password pair against the panel accounts. A successful
login stamps a global access, exactly like the desktop panel does when it
opens.

The password comes from --passwd, or is read from stdin when the flag is
omitted.

Example:
  painelctl login regina --passwd=mypassword
  echo -n mypassword | painelctl login regina`,
		Args: cobra.ExactArgs(1),
		RunE: runLogin,
	}

	cmd.Flags().String("passwd", "", "Password for authentication")
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	passwd, _ := cmd.Flags().GetString("passwd")
	if passwd == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		passwd = strings.TrimRight(line, "\r\n")
		if passwd == "" {
			if err != nil {
				return fmt.Errorf("no password provided: use --passwd or pipe it on stdin")
			}
			return fmt.Errorf("no password provided")
		}
	}

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	account, err := rt.users.Authenticate(ctx, args[0], passwd)
	if err != nil {
		return err
	}

	if jsonOutput {
		kv := map[string]any{
			"user":  account.Username,
			"name":  account.DisplayName,
			"role":  account.Role,
			"admin": account.IsAdmin(),
		}
		printJSON(kv)
	} else {
		okLabel.Println("✓ Login ok")
		fmt.Printf("%s (%s), role %s\n", account.DisplayName, account.Username, account.Role)
	}

	return nil
}
