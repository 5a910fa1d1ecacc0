package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tracestat/pkg/config"
	"tracestat/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a settings file",
		Long: `Validate a tracestat settings file without running an analysis.

Checks:
  - YAML syntax
  - Adversary marker
  - Pattern validity and capture-group counts
  - Webhook URLs, triggers, and timeouts`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(out, "\nConfiguration valid!\n")
	fmt.Fprintf(out, "  Adversary marker: %q\n", cfg.AdversaryMarker)
	fmt.Fprintf(out, "  Report format:    %s\n", cfg.Report.Format)
	fmt.Fprintf(out, "  Webhooks:         %d\n", len(cfg.Webhooks))

	fmt.Fprintf(out, "\nPatterns:\n")
	for _, p := range []struct {
		name, pattern, def string
	}{
		{"epoch", cfg.Patterns.Epoch, parser.DefaultEpochPattern},
		{"relay_stats", cfg.Patterns.RelayStats, parser.DefaultRelayStatsPattern},
		{"adversary_stats", cfg.Patterns.AdversaryStats, parser.DefaultAdversaryStatsPattern},
		{"circuit", cfg.Patterns.Circuit, parser.DefaultCircuitPattern},
	} {
		state := "default"
		if p.pattern != p.def {
			state = "overridden"
		}
		fmt.Fprintf(out, "  %-16s %s\n", p.name+":", state)
	}

	return nil
}
