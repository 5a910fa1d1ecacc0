package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tracestat/pkg/analyzer"
	"tracestat/pkg/config"
	"tracestat/pkg/output"
	"tracestat/pkg/parser"
	"tracestat/pkg/webhook"
)

// ExitCode is set by commands to indicate the result.
var ExitCode = 0

// usageLine is printed on stdout when the argument count is wrong.
const usageLine = "Usage: tracestat <input-trace-file> <output-report-file>"

// AnalyzeOptions holds command-line options for the analysis run.
type AnalyzeOptions struct {
	ConfigPath string
	Format     string
	Stdout     bool
	Quiet      bool
	Verbose    bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// RunAnalyze is the root command body: analyze a trace file and write
// the summary report.
func RunAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	if len(args) != 2 {
		// The CLI contract: a wrong argument count reports usage on
		// stdout and exits non-zero.
		fmt.Fprintln(cmd.OutOrStdout(), usageLine)
		ExitCode = 2
		return nil
	}
	inputPath, outputPath := args[0], args[1]

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Load settings, or run on defaults when no file is given
	var cfg *config.Config
	var err error
	if opts.ConfigPath != "" {
		cfg, err = config.Load(ctx, opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("validating default config: %w", err)
		}
	}

	matchers, err := cfg.MatcherSet()
	if err != nil {
		return fmt.Errorf("building matchers: %w", err)
	}

	a := analyzer.New(
		analyzer.WithMatchers(matchers),
		analyzer.WithAdversaryMarker(cfg.AdversaryMarker),
	)

	source := parser.NewFileSource(inputPath)
	defer source.Close()

	// A missing or unreadable input fails here, before anything is
	// written to the output path.
	result, err := a.Analyze(ctx, source)
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", inputPath, err)
	}

	report := output.NewReport(result)

	formatter, err := createFormatter(cfg, opts)
	if err != nil {
		return err
	}

	if err := writeReport(ctx, formatter, report, outputPath); err != nil {
		return err
	}

	if opts.Stdout {
		// With --quiet the echo collapses to the one-line summary; the
		// report file always gets the full rendering.
		echo := formatter
		if opts.Quiet {
			echo = output.NewTextFormatter(output.FormatOptions{Quiet: true})
		}
		if err := echo.Format(ctx, report, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("formatting output: %w", err)
		}
	}

	// Send webhooks (errors logged but don't fail the run)
	sendWebhooks(ctx, cfg, opts, report)

	if !opts.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Analysis complete. Report saved to %s\n", outputPath)
	}

	return nil
}

// writeReport renders the report into the output file, replacing any
// existing content.
func writeReport(ctx context.Context, formatter output.Formatter, report *output.Report, path string) error {
	f, err := os.Create(path) // #nosec G304 -- user-provided output path is expected
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}

	if err := formatter.Format(ctx, report, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("rendering report: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("writing report file: %w", err)
	}

	return nil
}

func createFormatter(cfg *config.Config, opts *AnalyzeOptions) (output.Formatter, error) {
	format := opts.Format
	if format == "" {
		format = cfg.Report.Format
	}
	if format == "" {
		format = config.DefaultFormat
	}

	formatOpts := output.FormatOptions{
		Verbose: opts.Verbose,
	}

	switch format {
	case "text":
		return output.NewTextFormatter(formatOpts), nil
	case "json":
		return output.NewJSONFormatter(formatOpts), nil
	default:
		return nil, fmt.Errorf("unknown report format %q (use text or json)", format)
	}
}

// sendWebhooks sends the report to all configured webhooks.
// Errors are logged to stderr but don't fail the analysis.
func sendWebhooks(ctx context.Context, cfg *config.Config, opts *AnalyzeOptions, report *output.Report) {
	webhooks := collectWebhooks(cfg, opts)
	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()

	for _, wh := range webhooks {
		if !shouldFireWebhook(wh.Trigger, report.HasCompromise()) {
			continue
		}

		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			fmt.Fprintf(os.Stderr, "Webhook %s: sent (%d, %s)\n", name, resp.StatusCode, resp.Duration)
		} else {
			fmt.Fprintf(os.Stderr, "Webhook %s: failed (%v)\n", name, resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnCompromise
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook determines if a webhook should fire.
func shouldFireWebhook(trigger config.WebhookTrigger, hasCompromise bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return hasCompromise
	}
}
