package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/painelhub/painelcore/internal/common/logtrace"
)

const cliVersion = "v0.2.0"

// Persistent flags, shared by every subcommand.
var (
	jsonOutput bool
	configFile string
)

// ErrAlreadyHandled marks errors whose message was already printed; Execute
// only sets the exit code for them.
var ErrAlreadyHandled = errors.New("already handled")

// Output labels. Tests switch color off through the color package.
var (
	okLabel    = color.New(color.FgGreen)
	errorLabel = color.New(color.FgRed)
)

var rootCmd = &cobra.Command{
	Use:   "painelctl [command] [flags]",
	Short: "painelctl - manage the product panel catalog and its accounts",
	Long: `painelctl talks to the product panel database directly. It can watch
the catalog refresh live, inspect and change product status, verify logins
and administer panel accounts.

Database settings resolve from the environment and .env files; painelctl.conf
only tunes CLI behavior (refresh interval, timeouts, log level).

Examples:
  # Watch the catalog with live refresh
  painelctl watch

  # Show every stored product once
  painelctl status --all

  # Flag a product as updating
  painelctl set-status "Macro da Folha" Updating

  # Verify a login
  painelctl login regina --passwd=s3cret`,
	PersistentPreRun: preRunHandlePersistents,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file overriding the default path")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Emit JSON instead of text")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newLoginCmd())
}

// Execute runs the command tree and owns process exit on failure. Cobra's
// own error and usage printing are silenced so a failure renders exactly
// once, as JSON or a colored line.
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	err := rootCmd.Execute()
	if err == nil {
		return
	}
	if !errors.Is(err, ErrAlreadyHandled) {
		if jsonOutput {
			printJSON(map[string]string{"error": err.Error()})
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	os.Exit(1)
}

// preRunHandlePersistents loads the CLI config and configures logging before
// command execution. A missing config file is normal and keeps the defaults;
// the config subcommands manage the file themselves and version must never
// fail, so both skip the load.
func preRunHandlePersistents(cmd *cobra.Command, args []string) {
	skipLoad := false
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" || c.Name() == "version" {
			skipLoad = true
			break
		}
	}

	if !skipLoad {
		if err := loadCLIConfig(configFile); err != nil {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	logtrace.InitConsoleLogger()
	logtrace.SetLevel(getConfig().LogLevel)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of painelctl",
		Run: func(cmd *cobra.Command, args []string) {
			configPath, err := defaultConfigPath()
			if err != nil {
				configPath = "unknown"
			}

			if jsonOutput {
				printJSON(map[string]string{
					"version":     cliVersion,
					"config_file": configPath,
				})
				return
			}
			cmd.Printf("painelctl %s\n", cliVersion)
			cmd.Printf("Config file: %s\n", configPath)
		},
	}
}

// printJSON renders data to stdout. Encoding failures are terminal: the
// caller promised JSON output and there is nothing sensible to fall back to.
func printJSON(data any) {
	out, err := jsoniter.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
