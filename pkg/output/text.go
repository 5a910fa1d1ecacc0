package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"tracestat/pkg/analyzer"
)

// TextFormatter renders reports as the human-readable summary text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	s := report.Summary
	_, err := fmt.Fprintf(w, "tracestat: %d circuits (%d compromised), %d clients exposed, %d epochs\n",
		s.TotalCircuits, s.CompromisedCircuits, s.CompromisedClients, s.Epochs)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	res := report.Result

	f.circuitSection(res, w)
	f.clientSection(res, w)
	f.relaySection(res, w)

	if f.opts.Verbose {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Sources: %s\n", strings.Join(report.Metadata.Sources, ", "))
		fmt.Fprintf(w, "Lines processed: %d (%d matched)\n",
			res.Stats.LinesProcessed, res.Stats.LinesMatched)
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return nil
}

func (f *TextFormatter) circuitSection(res *analyzer.Result, w io.Writer) {
	fmt.Fprintln(w, "CIRCUIT STATISTICS")
	fmt.Fprintln(w, "==================")
	fmt.Fprintf(w, "Total unique circuits: %d\n", res.TotalCircuits)
	fmt.Fprintf(w, "Compromised circuits: %d (%s)\n",
		res.CompromisedCircuits, percent(res.CompromisedCircuits, res.TotalCircuits, 2))

	if res.CompromisedCircuits > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "COMPROMISED CIRCUIT BREAKDOWN:")
		for _, vector := range analyzer.AllVectors {
			count := res.CircuitCounts[vector]
			if count == 0 {
				continue
			}
			fmt.Fprintf(w, " - %s: %d circuits (%s)\n",
				vector, count, percent(count, res.CompromisedCircuits, 2))
		}
	}
}

func (f *TextFormatter) clientSection(res *analyzer.Result, w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "CLIENT STATISTICS")
	fmt.Fprintln(w, "================")
	fmt.Fprintf(w, "Total clients: %d\n", res.TotalClients)
	fmt.Fprintf(w, "Clients using compromised circuits: %d (%s)\n",
		res.CompromisedClients, percent(res.CompromisedClients, res.TotalClients, 2))

	if res.CompromisedClients == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "COMPROMISE TYPES USED BY CLIENTS:")
	for _, vector := range analyzer.AllVectors {
		count := res.ClientCounts[vector]
		if count == 0 {
			continue
		}
		fmt.Fprintf(w, " - %s: %d clients (%s)\n",
			vector, count, percent(count, res.TotalClients, 2))
	}

	if multi := res.MultipleExposureClients(); multi > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Clients with multiple exposure types: %d (%s)\n",
			multi, percent(multi, res.CompromisedClients, 2))
	}
}

func (f *TextFormatter) relaySection(res *analyzer.Result, w io.Writer) {
	if len(res.Epochs) == 0 {
		return
	}

	epochs := float64(len(res.Epochs))
	var totals, guards, exits, advGuards, advExits float64
	for _, e := range res.Epochs {
		totals += float64(e.TotalRelays)
		guards += float64(e.TotalGuards)
		exits += float64(e.TotalExits)
		advGuards += float64(e.AdvGuards)
		advExits += float64(e.AdvExits)
	}
	avgTotal := totals / epochs
	avgGuards := guards / epochs
	avgExits := exits / epochs
	avgAdvGuards := advGuards / epochs
	avgAdvExits := advExits / epochs

	fmt.Fprintln(w)
	fmt.Fprintln(w, "RELAY STATISTICS")
	fmt.Fprintln(w, "================")
	fmt.Fprintf(w, "Number of epochs (started hours): %d\n", len(res.Epochs))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Average across all epochs:")
	fmt.Fprintf(w, " - Total relays: %.1f\n", avgTotal)
	fmt.Fprintf(w, " - Guard relays: %.1f (%s of total)\n", avgGuards, ratio(avgGuards, avgTotal, 1))
	fmt.Fprintf(w, " - Exit relays: %.1f (%s of total)\n", avgExits, ratio(avgExits, avgTotal, 1))
	fmt.Fprintf(w, " - Adversary guards: %.1f (%s of guards)\n", avgAdvGuards, ratio(avgAdvGuards, avgGuards, 1))
	fmt.Fprintf(w, " - Adversary exits: %.1f (%s of exits)\n", avgAdvExits, ratio(avgAdvExits, avgExits, 1))
}

// percent formats n/d as a percentage with the given number of decimal
// places, or "n/a" when the denominator is zero.
func percent(n, d, places int) string {
	return ratio(float64(n), float64(d), places)
}

// ratio is percent over float operands.
func ratio(n, d float64, places int) string {
	if d == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.*f%%", places, 100*n/d)
}
