package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/painelhub/painelcore/internal/painelsrv/refresh"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the catalog with live refresh",
	Long: `Watch runs the periodic catalog refresh and renders every cycle: the
current snapshot plus what changed since the previous one. Fetches slower
than the interval are never queued; late ticks are dropped.

Examples:
  # Watch with the configured interval
  painelctl watch

  # Refresh every second, include the administration shortcut
  painelctl watch --interval=1s --admin

  # Emit three cycles as JSON and exit
  painelctl watch --cycles=3 -j`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("interval", 0, "Refresh interval (overrides config)")
	watchCmd.Flags().Bool("admin", false, "Include the administration shortcut")
	watchCmd.Flags().Int("cycles", 0, "Exit after this many cycles (0 = run until interrupted)")
	rootCmd.AddCommand(watchCmd)
}

// runWatch handles the watch command execution
func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := getConfig()
	interval := cfg.RefreshInterval.Duration
	if v, _ := cmd.Flags().GetDuration("interval"); v > 0 {
		interval = v
	}
	admin, _ := cmd.Flags().GetBool("admin")
	maxCycles, _ := cmd.Flags().GetInt("cycles")

	opts := []refresh.Option{refresh.WithInterval(interval)}
	if admin || cfg.AdminPanel {
		opts = append(opts, refresh.WithVirtualEntries(rt.catalog.Manifest().VirtualEntries()))
	}

	sched := refresh.New(rt.catalog, opts...)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	if !jsonOutput {
		fmt.Printf("Watching %s every %s. Ctrl-C to stop.\n", rt.settings.Redacted(), interval)
	}

	seen := 0
	for {
		select {
		case <-ctx.Done():
			if !jsonOutput {
				fmt.Println()
			}
			return nil
		case cycle, ok := <-sched.Cycles():
			if !ok {
				return nil
			}
			if jsonOutput {
				printJSON(toCycleJSON(cycle))
			} else {
				renderCycle(cycle)
			}
			seen++
			if maxCycles > 0 && seen >= maxCycles {
				return nil
			}
		}
	}
}

func renderCycle(c refresh.Cycle) {
	stamp := c.Started.Format("15:04:05")
	if c.Err != nil {
		errorLabel.Printf("[%s] refresh #%d failed: %v\n", stamp, c.Seq, c.Err)
		return
	}

	fmt.Printf("[%s] refresh #%d (%d products, %s)\n",
		stamp, c.Seq, len(c.Products), c.Elapsed.Round(time.Millisecond))
	printProducts(c.Products)
	for _, ch := range c.Diff {
		fmt.Printf("  %s\n", describeChange(ch))
	}
}
