package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/painelhub/painelcore/internal/painelsrv/db/migrations"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded schema migrations",
	Long: `Apply the embedded schema migrations to the configured database. The
migrations are versioned and idempotent: running migrate against an
up-to-date schema is a no-op.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

// runMigrate handles the migrate command execution
func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.pool.Err(); err != nil {
		return err
	}
	if err := migrations.Up(ctx, rt.pool.Handle()); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]any{"target": rt.settings.Redacted(), "migrated": true})
	} else {
		okLabel.Println("✓ Schema is up to date")
		fmt.Printf("Target: %s\n", rt.settings.Redacted())
	}
	return nil
}
