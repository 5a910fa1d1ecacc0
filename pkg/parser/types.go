// Package parser provides trace file reading and event matching.
package parser

// Line is a single raw trace line with its provenance.
type Line struct {
	// Raw is the original line content.
	Raw string

	// Source is the file path this line came from.
	Source string

	// LineNum is the 1-based line number in the source file.
	LineNum int
}

// EventKind identifies the recognized trace line forms.
type EventKind string

const (
	KindEpoch          EventKind = "epoch"
	KindRelayStats     EventKind = "relay_stats"
	KindAdversaryStats EventKind = "adversary_stats"
	KindCircuit        EventKind = "circuit"
)

// Event is a typed trace event extracted from a matching line.
type Event interface {
	// Kind returns the event kind.
	Kind() EventKind
}

// EpochEvent marks the start of a new simulation epoch.
type EpochEvent struct {
	// Consensus is the consensus label from the marker line, if present.
	Consensus string
}

// Kind returns KindEpoch.
func (e *EpochEvent) Kind() EventKind { return KindEpoch }

// RelayStatsEvent carries the relay composition reported by the simulator.
type RelayStatsEvent struct {
	TotalRelays int
	TotalGuards int
	TotalExits  int
}

// Kind returns KindRelayStats.
func (e *RelayStatsEvent) Kind() EventKind { return KindRelayStats }

// AdversaryStatsEvent carries the adversarial relay counts.
type AdversaryStatsEvent struct {
	AdvGuards int
	AdvExits  int
}

// Kind returns KindAdversaryStats.
func (e *AdversaryStatsEvent) Kind() EventKind { return KindAdversaryStats }

// CircuitEvent records a client using a circuit for a stream request.
// The relay identifiers are kept verbatim, adversarial marker included.
type CircuitEvent struct {
	Client int
	Guard  string
	Middle string
	Exit   string
}

// Kind returns KindCircuit.
func (e *CircuitEvent) Kind() EventKind { return KindCircuit }
