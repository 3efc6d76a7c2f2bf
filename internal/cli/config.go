package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "painelctl.conf"

// duration lets TOML carry values like "3s" or "250ms".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config tunes the CLI. Database settings are deliberately absent: those
// resolve from the environment and .env files exactly like any other panel
// process, so the CLI and the panel can never disagree about the target.
type Config struct {
	// LogLevel is a zerolog level name (trace, debug, info, warn, error).
	LogLevel string `toml:"log_level"`
	// RefreshInterval is the watch reload period.
	RefreshInterval duration `toml:"refresh_interval"`
	// AcquireTimeout bounds the wait for a pooled connection.
	AcquireTimeout duration `toml:"acquire_timeout"`
	// QueryTimeout bounds one storage unit of work.
	QueryTimeout duration `toml:"query_timeout"`
	// AdminPanel appends the administration shortcut to watch output.
	AdminPanel bool `toml:"admin_panel"`
}

var cliConfig *Config

func defaultCLIConfig() *Config {
	return &Config{
		LogLevel:        "info",
		RefreshInterval: duration{3 * time.Second},
		AcquireTimeout:  duration{5 * time.Second},
		QueryTimeout:    duration{5 * time.Second},
	}
}

// defaultConfigPath returns the default path for the config file. It uses
// the OS-specific config directory (e.g. ~/.config/painelctl on Linux).
func defaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "painelctl", DefaultConfigFile), nil
}

// loadCLIConfig reads the TOML config into the process. A missing file at
// the default location keeps the defaults; an explicitly given file must
// exist, and a file that exists must parse.
func loadCLIConfig(file string) error {
	cfg := defaultCLIConfig()

	explicit := file != ""
	if !explicit {
		var err error
		file, err = defaultConfigPath()
		if err != nil {
			return err
		}
	}

	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			cliConfig = cfg
			return nil
		}
		return fmt.Errorf("unable to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unable to parse %s: %w", file, err)
	}
	cliConfig = cfg
	return nil
}

// getConfig returns the loaded configuration, or the defaults when no load
// has happened (config subcommands skip loading).
func getConfig() *Config {
	if cliConfig == nil {
		cliConfig = defaultCLIConfig()
	}
	return cliConfig
}

// WriteConfig writes the configuration to the specified file
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(file), os.ModePerm); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}
	return nil
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long:  `Manage CLI configuration settings like the refresh interval and log level.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Help()
		return nil
	},
}

// configInitCmd writes a config file with the default settings
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			var err error
			path, err = defaultConfigPath()
			if err != nil {
				return err
			}
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
		if err := defaultCLIConfig().WriteConfig(path); err != nil {
			return err
		}

		if jsonOutput {
			printJSON(map[string]string{"config_file": path})
		} else {
			okLabel.Println("✓ Config written")
			fmt.Printf("Config file: %s\n", path)
		}
		return nil
	},
}

// configShowCmd prints the resolved configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadCLIConfig(configFile); err != nil {
			return err
		}
		cfg := getConfig()

		if jsonOutput {
			printJSON(map[string]any{
				"log_level":        cfg.LogLevel,
				"refresh_interval": cfg.RefreshInterval.String(),
				"acquire_timeout":  cfg.AcquireTimeout.String(),
				"query_timeout":    cfg.QueryTimeout.String(),
				"admin_panel":      cfg.AdminPanel,
			})
			return nil
		}
		return toml.NewEncoder(os.Stdout).Encode(cfg)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
