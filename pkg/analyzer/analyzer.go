package analyzer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"tracestat/pkg/parser"
)

// Analyzer accumulates trace events into an aggregate result. State is
// scoped to one analysis run; Analyze resets it on entry.
type Analyzer struct {
	matchers *parser.MatcherSet
	marker   string

	circuits      map[CircuitID]struct{}
	circuitCounts map[CompromiseVector]int
	exposures     map[int]map[CompromiseVector]struct{}
	epochs        []RelaySnapshot
	snapshot      RelaySnapshot
	epochOpen     bool
	stats         Stats
}

// Option configures analyzer behavior.
type Option func(*Analyzer)

// WithMatchers sets the matcher set used to recognize trace lines.
func WithMatchers(ms *parser.MatcherSet) Option {
	return func(a *Analyzer) {
		a.matchers = ms
	}
}

// WithAdversaryMarker sets the suffix marking adversarial relays.
func WithAdversaryMarker(marker string) Option {
	return func(a *Analyzer) {
		a.marker = marker
	}
}

// New creates an analyzer. Without options it recognizes the simulator's
// default line forms and the "*" adversary marker.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		marker: DefaultAdversaryMarker,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.matchers == nil {
		a.matchers = parser.DefaultMatcherSet()
	}
	a.Reset()
	return a
}

// Reset clears accumulated state for a fresh run.
func (a *Analyzer) Reset() {
	a.circuits = make(map[CircuitID]struct{})
	a.circuitCounts = make(map[CompromiseVector]int)
	a.exposures = make(map[int]map[CompromiseVector]struct{})
	a.epochs = nil
	a.snapshot = RelaySnapshot{}
	a.epochOpen = false
	a.stats = Stats{}
}

// Process examines a single trace line. Lines matching no pattern are
// skipped silently; trace logs contain plenty of unrelated output.
func (a *Analyzer) Process(ctx context.Context, line *parser.Line) error {
	a.stats.LinesProcessed++

	event := a.matchers.Match(line.Raw)
	if event == nil {
		return nil
	}
	a.stats.LinesMatched++

	switch e := event.(type) {
	case *parser.EpochEvent:
		a.openEpoch(e.Consensus)
	case *parser.RelayStatsEvent:
		a.snapshot.TotalRelays = e.TotalRelays
		a.snapshot.TotalGuards = e.TotalGuards
		a.snapshot.TotalExits = e.TotalExits
	case *parser.AdversaryStatsEvent:
		a.snapshot.AdvGuards = e.AdvGuards
		a.snapshot.AdvExits = e.AdvExits
	case *parser.CircuitEvent:
		a.observeCircuit(e)
	default:
		return fmt.Errorf("unhandled event kind %q", event.Kind())
	}

	return nil
}

// openEpoch closes the previous epoch, if any, and starts a new one.
// The snapshot is stored by value, so later stats lines cannot
// retroactively alter stored epochs. Relay counts are deliberately not
// reset: an epoch without fresh stats lines inherits the last reported
// values.
func (a *Analyzer) openEpoch(consensus string) {
	if a.epochOpen {
		a.epochs = append(a.epochs, a.snapshot)
	}
	a.epochOpen = true
	a.snapshot.Consensus = consensus
}

// observeCircuit applies the first-seen compromise accounting rules.
// Only the first sighting of a compromised circuit identity counts toward
// the tally and the client's exposure set; every sighting lands the
// identity in the cumulative circuit set.
func (a *Analyzer) observeCircuit(e *parser.CircuitEvent) {
	id := CircuitID{Guard: e.Guard, Middle: e.Middle, Exit: e.Exit}
	vector := CompromiseVector{
		Guard:  strings.HasSuffix(e.Guard, a.marker),
		Middle: strings.HasSuffix(e.Middle, a.marker),
		Exit:   strings.HasSuffix(e.Exit, a.marker),
	}

	if _, seen := a.circuits[id]; !seen && vector.Compromised() {
		a.circuitCounts[vector]++

		set := a.exposures[e.Client]
		if set == nil {
			set = make(map[CompromiseVector]struct{})
			a.exposures[e.Client] = set
		}
		set[vector] = struct{}{}
	}

	a.circuits[id] = struct{}{}
}

// Finalize flushes the open epoch, if any, and builds the result.
func (a *Analyzer) Finalize(ctx context.Context) (*Result, error) {
	if a.epochOpen {
		a.epochs = append(a.epochs, a.snapshot)
		a.epochOpen = false
	}

	result := &Result{
		TotalCircuits:   len(a.circuits),
		CircuitCounts:   make(map[CompromiseVector]int, len(a.circuitCounts)),
		ClientCounts:    make(map[CompromiseVector]int),
		ClientExposures: make(map[int][]CompromiseVector, len(a.exposures)),
		Epochs:          a.epochs,
		Stats:           a.stats,
	}

	for vector, count := range a.circuitCounts {
		result.CircuitCounts[vector] = count
		result.CompromisedCircuits += count
	}

	maxClient := -1
	for client, set := range a.exposures {
		if client > maxClient {
			maxClient = client
		}
		vectors := make([]CompromiseVector, 0, len(set))
		for _, vector := range AllVectors {
			if _, ok := set[vector]; ok {
				vectors = append(vectors, vector)
				result.ClientCounts[vector]++
			}
		}
		result.ClientExposures[client] = vectors
	}
	result.TotalClients = maxClient + 1
	result.CompromisedClients = len(a.exposures)

	return result, nil
}

// Analyze consumes a trace source to exhaustion and returns the
// aggregate result. The result is a pure function of the trace content.
func (a *Analyzer) Analyze(ctx context.Context, source parser.TraceSource) (*Result, error) {
	a.Reset()
	a.stats.StartTime = time.Now()

	seen := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading trace source: %w", err)
		}

		if !seen[line.Source] {
			seen[line.Source] = true
			a.stats.Sources = append(a.stats.Sources, line.Source)
		}

		if err := a.Process(ctx, line); err != nil {
			return nil, err
		}
	}

	a.stats.EndTime = time.Now()

	return a.Finalize(ctx)
}
