// Package cli provides the command-line interface for tracestat.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tracestat/internal/cli/commands"
	"tracestat/internal/cli/plugins"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	// Plugin dispatch has to happen before cobra runs: the root command
	// accepts arbitrary positional args, so an unknown first token would
	// otherwise be swallowed as an analysis argument.
	if len(os.Args) > 1 {
		name := os.Args[1]
		if len(name) > 0 && name[0] != '-' && !isBuiltinCommand(rootCmd, name) {
			if pluginPath, err := plugins.Find(name); err == nil {
				return plugins.Execute(pluginPath, os.Args[2:])
			}
		}
	}

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command. The root command itself
// runs the analysis: tracestat <input-trace-file> <output-report-file>.
func NewRootCommand() *cobra.Command {
	opts := &commands.AnalyzeOptions{}

	rootCmd := &cobra.Command{
		Use:   "tracestat <input-trace-file> <output-report-file>",
		Short: "Summarize circuit compromise from simulator trace logs",
		Long: `tracestat analyzes a trace log produced by an onion-routing network
simulator and writes a summary report of circuit compromise and relay
composition across simulated epochs.

It reports:
  - Unique and compromised circuits, broken down by which positions
    (guard, middle, exit) the adversary controls
  - Clients exposed to compromised circuits, per compromise type
  - Average relay counts across simulation epochs

Relays under adversarial control are recognized by a marker suffix on
their identifier (default "*").

PLUGINS:
  Unknown subcommands resolve to standalone binaries named
  tracestat-<command>, searched in the tracestat binary directory,
  ~/.tracestat/plugins/, and PATH.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunAnalyze(cmd, args, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "Settings file (YAML)")
	flags.StringVarP(&opts.Format, "format", "f", "", "Report format (text|json)")
	flags.BoolVar(&opts.Stdout, "stdout", false, "Also print the report to stdout")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress the confirmation line")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Append run metadata to the report")

	// Webhook flags
	flags.StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	flags.StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	flags.StringVar(&opts.WebhookTrigger, "webhook-trigger", "", "When to fire webhooks (on_compromise|always|never)")

	// Add subcommands
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
