package cli

import (
	"fmt"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/spf13/cobra"
)

// pingCmd represents the ping command
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check database connectivity",
	Long: `Check that the configured database answers. The target comes from the
environment and .env files, like every other command. Retries with backoff
before giving up.`,
	RunE: runPing,
}

func init() {
	pingCmd.Flags().Uint("attempts", 3, "Attempts before giving up")
	rootCmd.AddCommand(pingCmd)
}

// runPing handles the ping command execution
func runPing(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	attempts, _ := cmd.Flags().GetUint("attempts")

	start := time.Now()
	err = retry.Do(
		func() error { return rt.pool.Ping(ctx) },
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
	)
	elapsed := time.Since(start).Round(time.Millisecond)

	if err != nil {
		if jsonOutput {
			printJSON(map[string]any{
				"target": rt.settings.Redacted(),
				"ok":     false,
				"error":  err.Error(),
			})
		} else {
			errorLabel.Printf("✗ %s unreachable: %v\n", rt.settings.Redacted(), err)
		}
		return ErrAlreadyHandled
	}

	if jsonOutput {
		printJSON(map[string]any{
			"target":     rt.settings.Redacted(),
			"ok":         true,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	} else {
		okLabel.Printf("✓ %s answered in %s\n", rt.settings.Redacted(), elapsed)
		fmt.Printf("Open connections: %d\n", rt.pool.OpenConns())
	}
	return nil
}
