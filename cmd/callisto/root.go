package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"promptforge/callisto/pkg/cli"
	"promptforge/callisto/pkg/config"
	"promptforge/callisto/pkg/registry"
	"promptforge/callisto/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - prompt template validation and scoring engine",
	Long: `Callisto validates prompt templates using {{variable}} placeholder
syntax and scores their compatibility against LLM provider capability
profiles.

It provides:
  - Placeholder syntax validation (brace balance, nesting, naming)
  - Variable definition and usage checking
  - Security scanning (injection, sensitive data, unsafe content)
  - Provider compatibility checking and scoring
  - Multi-provider comparison and ranking`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration file (if any) and installs the
// configured logger as the process default.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if cfgFile != "" {
		if err := config.Initialize(cfgFile); err != nil {
			return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
		}
		cfg = config.GetConfig()
	} else {
		cfg = config.Default()
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return nil, cli.NewConfigError("logging", err.Error())
	}
	slog.SetDefault(logger)

	return cfg, nil
}

// buildRegistry creates the capability registry seeded with built-in
// profiles and applies the configured profiles file on top.
func buildRegistry(cfg *config.Config) (*registry.Registry, error) {
	reg := registry.New()
	if cfg.Profiles.Path != "" {
		if err := reg.ApplyFile(cfg.Profiles.Path); err != nil {
			return nil, cli.NewConfigError("profiles", err.Error())
		}
	}
	return reg, nil
}
