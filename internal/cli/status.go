package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/painelhub/painelcore/internal/painelsrv/db/models"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the catalog once",
	Long: `Show the catalog as the panel would load it: the principal products,
provisioning any that are missing. With --all, list every stored product
instead, including rows outside the principal set.

Examples:
  # Show the principal catalog
  painelctl status

  # Show every stored product as JSON
  painelctl status --all -j`,
	RunE: getStatus,
}

func init() {
	statusCmd.Flags().Bool("all", false, "List every stored product, not just the principal set")
	rootCmd.AddCommand(statusCmd)
}

// getStatus handles the one-shot catalog listing
func getStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	all, _ := cmd.Flags().GetBool("all")

	var products []models.Product
	if all {
		products, err = rt.catalog.ListAll(ctx)
	} else {
		products, err = rt.catalog.ListPrincipal(ctx)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(toProductsJSON(products))
		return nil
	}

	fmt.Printf("%d products @ %s\n", len(products), rt.settings.Redacted())
	printProducts(products)
	return nil
}
