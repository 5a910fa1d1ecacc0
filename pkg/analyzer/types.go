// Package analyzer implements the streaming aggregation over simulator
// trace events: circuit deduplication, compromise classification, client
// exposure tracking, and per-epoch relay snapshots.
package analyzer

import (
	"strings"
	"time"
)

// DefaultAdversaryMarker is the suffix the simulator appends to relay
// identifiers under adversarial control.
const DefaultAdversaryMarker = "*"

// CompromiseVector records which positions of a circuit are adversarially
// controlled.
type CompromiseVector struct {
	Guard  bool
	Middle bool
	Exit   bool
}

// Compromised reports whether any position is adversarial.
func (v CompromiseVector) Compromised() bool {
	return v.Guard || v.Middle || v.Exit
}

// String renders the vector as the +-joined names of its compromised
// positions in guard, middle, exit order. The empty vector renders "none".
func (v CompromiseVector) String() string {
	var parts []string
	if v.Guard {
		parts = append(parts, "guard")
	}
	if v.Middle {
		parts = append(parts, "middle")
	}
	if v.Exit {
		parts = append(parts, "exit")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// MarshalText implements encoding.TextMarshaler so vectors can serve as
// JSON map keys.
func (v CompromiseVector) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// AllVectors lists the seven compromised vectors in presentation order:
// single positions first, then pairs, then all three.
var AllVectors = []CompromiseVector{
	{Guard: true},
	{Middle: true},
	{Exit: true},
	{Guard: true, Middle: true},
	{Guard: true, Exit: true},
	{Middle: true, Exit: true},
	{Guard: true, Middle: true, Exit: true},
}

// CircuitID identifies a circuit by its relay identifier triple, marker
// included: a compromised relay and a clean relay with otherwise
// identical names are distinct identities.
type CircuitID struct {
	Guard  string
	Middle string
	Exit   string
}

// RelaySnapshot captures the relay composition in effect for one epoch.
type RelaySnapshot struct {
	// Consensus is the consensus label from the epoch marker, if any.
	Consensus string `json:"consensus,omitempty"`

	TotalRelays int `json:"total_relays"`
	TotalGuards int `json:"total_guards"`
	TotalExits  int `json:"total_exits"`
	AdvGuards   int `json:"adversary_guards"`
	AdvExits    int `json:"adversary_exits"`
}

// Stats contains execution statistics for an analysis run.
type Stats struct {
	// LinesProcessed is the total number of trace lines examined.
	LinesProcessed int `json:"lines_processed"`

	// LinesMatched is the number of lines that matched an event pattern.
	LinesMatched int `json:"lines_matched"`

	// Sources lists the trace files that were analyzed, in order.
	Sources []string `json:"sources,omitempty"`

	// StartTime is when analysis began.
	StartTime time.Time `json:"start_time"`

	// EndTime is when analysis completed.
	EndTime time.Time `json:"end_time"`
}

// Result is the complete aggregate produced by one analysis run.
type Result struct {
	// TotalCircuits is the number of distinct circuit identities seen.
	TotalCircuits int `json:"total_circuits"`

	// CompromisedCircuits is the number of distinct compromised circuits,
	// equal to the sum of CircuitCounts.
	CompromisedCircuits int `json:"compromised_circuits"`

	// CircuitCounts tallies distinct compromised circuits per vector.
	CircuitCounts map[CompromiseVector]int `json:"circuit_counts"`

	// TotalClients is max(exposed client index)+1, or 0 when no client
	// ever used a compromised circuit. Clients that only ever used clean
	// circuits are invisible to this count.
	TotalClients int `json:"total_clients"`

	// CompromisedClients is the number of distinct clients with at least
	// one compromise exposure.
	CompromisedClients int `json:"compromised_clients"`

	// ClientCounts tallies, per vector, the clients exposed to it.
	// A client exposed to several vectors appears in several buckets.
	ClientCounts map[CompromiseVector]int `json:"client_counts"`

	// ClientExposures maps each exposed client to its distinct vectors,
	// ordered as in AllVectors.
	ClientExposures map[int][]CompromiseVector `json:"client_exposures"`

	// Epochs holds one relay snapshot per epoch marker, in trace order.
	Epochs []RelaySnapshot `json:"epochs"`

	// Stats provides execution statistics.
	Stats Stats `json:"stats"`
}

// MultipleExposureClients returns the number of clients exposed to more
// than one distinct compromise vector.
func (r *Result) MultipleExposureClients() int {
	count := 0
	for _, vectors := range r.ClientExposures {
		if len(vectors) > 1 {
			count++
		}
	}
	return count
}
