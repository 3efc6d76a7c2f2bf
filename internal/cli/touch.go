package cli

import (
	"github.com/spf13/cobra"
)

// touchCmd represents the touch command
var touchCmd = &cobra.Command{
	Use:   "touch <product>",
	Short: "Record one access to a product",
	Long: `Record an access to a stored product for a user: the product's last
access moves to now and one access log row is appended, atomically. This is
what the panel does when a user opens a product.

Example:
  painelctl touch "Formatador de Balancete" --user regina`,
	Args: cobra.ExactArgs(1),
	RunE: runTouch,
}

func init() {
	touchCmd.Flags().String("user", "", "Username to record the access for (required)")
	touchCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(touchCmd)
}

// runTouch handles the touch command execution
func runTouch(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	product, err := resolveProduct(ctx, rt.catalog, args[0])
	if err != nil {
		return err
	}

	user, _ := cmd.Flags().GetString("user")
	if err := rt.catalog.RecordAccess(ctx, product, user); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]string{"product": product.Name, "user": user})
	} else {
		okLabel.Printf("✓ Access to %s recorded for %s\n", product.Name, user)
	}
	return nil
}
