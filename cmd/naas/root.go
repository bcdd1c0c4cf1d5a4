package main

import (
	"fmt"
	"os"

	"github.com/aretw0/naas/internal/cli"
	"github.com/aretw0/naas/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "naas",
	Short: "No As A Service: polite refusals on demand",
	Long: `naas turns a description of what you were asked to do into a tactful "no",
and rates how tactful it reads.

Run 'naas serve' for the web UI and HTTP API, or 'naas ask' in the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Override the log level (debug, info, warn, error)")
}

// loadConfig reads the configuration named by --config and applies --log-level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

// loadStack builds the adapters for commands that talk to stores or the relay.
// Quiet keeps informational logs off an interactive terminal. Overrides
// from command flags are applied before anything is opened.
func loadStack(cmd *cobra.Command, quiet bool, overrides ...func(*config.Config)) (*cli.Stack, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(cfg)
	}
	quiet = quiet && !cmd.Flags().Changed("log-level")
	logger := cli.NewLogger(os.Stderr, cfg.Log, quiet)
	return cli.NewStack(cmd.Context(), cfg, logger)
}
