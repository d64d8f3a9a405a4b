package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/scrub/internal/config"
	"github.com/dshills/scrub/internal/log"
)

const version = "0.1.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitFindings     = 1
	ExitUsageError   = 2
	ExitRuntimeError = 4
)

var flagLogLevel string

var rootCmd = &cobra.Command{
	Use:   "scrub",
	Short: "Redact URLs from logs, telemetry and crash reports",
	Long: "Scrub replaces everything after the scheme of http, https, ftp and moz-extension URLs " +
		"with <URL>, keeping the surrounding text intact.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		overrides := map[string]string{}
		if flagLogLevel != "" {
			overrides["log.level"] = flagLogLevel
		}
		// Commands report config errors themselves; config set must still
		// run against a broken file.
		level := flagLogLevel
		if cfg, err := config.Load(overrides); err == nil {
			level = cfg.Log.Level
		}
		log.Configure(log.Config{Level: level, Output: os.Stderr})
		return nil
	},
}

// Run executes the root command and returns an exit code.
func Run() int {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

func init() {
	rootCmd.AddCommand(textCmd)
	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(jsonCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print scrub version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scrub version %s\n", version)
	},
}
