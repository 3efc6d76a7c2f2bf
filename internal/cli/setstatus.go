package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/painelhub/painelcore/internal/painelsrv/db/models"
)

// setStatusCmd represents the set-status command
var setStatusCmd = &cobra.Command{
	Use:   "set-status <product> <status>",
	Short: "Overwrite one product's status",
	Long: `Set the status of a stored product, referenced by numeric id or exact
name. The known statuses are Under Development, Updating and Ready; any
other value persists verbatim with a warning, and an empty value falls back
to Under Development.

Examples:
  painelctl set-status "Macro da Folha" Updating
  painelctl set-status 3 Ready`,
	Args: cobra.ExactArgs(2),
	RunE: runSetStatus,
}

func init() {
	rootCmd.AddCommand(setStatusCmd)
}

// runSetStatus handles the set-status command execution
func runSetStatus(cmd *cobra.Command, args []string) error {
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

	if err := rt.catalog.UpdateStatus(ctx, product, args[1]); err != nil {
		return err
	}

	status := strings.TrimSpace(args[1])
	if status == "" {
		status = models.StatusUnderDevelopment
	}

	if jsonOutput {
		printJSON(map[string]string{"product": product.Name, "status": status})
	} else {
		okLabel.Printf("✓ %s is now %s\n", product.Name, status)
	}
	return nil
}
