package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tracestat/pkg/parser"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <trace-file>...",
		Short: "Show what a trace file contains without analyzing it",
		Long: `Inspect scans trace files (globs allowed) and reports how many lines
match each recognized event form, the epoch span, and the number of
distinct clients appearing in circuit lines.

Useful for checking that a trace was captured correctly before running
a full analysis.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInspect,
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	files, err := parser.ExpandGlobs(args)
	if err != nil {
		return fmt.Errorf("expanding trace paths: %w", err)
	}

	matchers := parser.DefaultMatcherSet()
	source := parser.NewFileSource(files...)
	defer source.Close()

	var (
		lines          int
		counts         = make(map[parser.EventKind]int)
		clients        = make(map[int]bool)
		firstConsensus string
		lastConsensus  string
	)

	for {
		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading trace: %w", err)
		}

		lines++
		event := matchers.Match(line.Raw)
		if event == nil {
			continue
		}
		counts[event.Kind()]++

		switch e := event.(type) {
		case *parser.EpochEvent:
			if e.Consensus != "" {
				if firstConsensus == "" {
					firstConsensus = e.Consensus
				}
				lastConsensus = e.Consensus
			}
		case *parser.CircuitEvent:
			clients[e.Client] = true
		}
	}

	out := cmd.OutOrStdout()
	matched := 0
	for _, n := range counts {
		matched += n
	}

	fmt.Fprintf(out, "Files:           %d\n", len(files))
	fmt.Fprintf(out, "Lines scanned:   %d (%d matched)\n", lines, matched)
	fmt.Fprintf(out, "Epoch markers:   %d\n", counts[parser.KindEpoch])
	if firstConsensus != "" {
		fmt.Fprintf(out, "Consensus span:  %s .. %s\n", firstConsensus, lastConsensus)
	}
	fmt.Fprintf(out, "Relay stats:     %d\n", counts[parser.KindRelayStats])
	fmt.Fprintf(out, "Adversary stats: %d\n", counts[parser.KindAdversaryStats])
	fmt.Fprintf(out, "Circuit lines:   %d (%d distinct clients)\n",
		counts[parser.KindCircuit], len(clients))

	return nil
}
