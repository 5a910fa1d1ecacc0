package parser

import (
	"fmt"
	"regexp"
	"strconv"
)

// Default patterns for the four recognized line forms, as written by the
// simulator. Capture group arity is part of the contract: relay stats
// carries three integers, adversary stats two, circuit lines a client
// index and three relay identifiers.
const (
	DefaultEpochPattern          = `\[.*\] Entering simulation epoch with consensus from`
	DefaultRelayStatsPattern     = `Total relays in consensus: (\d+), Valid/Running Guards: (\d+), Valid/Running Exits: (\d+)`
	DefaultAdversaryStatsPattern = `Total adversary guard relays: (\d+), Total adversary exit relays: (\d+)`
	DefaultCircuitPattern        = `Client (\d+) uses the following circuit for a stream request: (\S+) (\S+) (\S+)`
)

// Minimum capture groups each pattern must provide.
const (
	relayStatsGroups     = 3
	adversaryStatsGroups = 2
	circuitGroups        = 4
)

// MatcherSet tests trace lines against the recognized patterns in a fixed
// priority order: epoch marker, relay stats, adversary stats, circuit.
// A line matches at most one pattern.
type MatcherSet struct {
	epoch          *regexp.Regexp
	relayStats     *regexp.Regexp
	adversaryStats *regexp.Regexp
	circuit        *regexp.Regexp
}

// NewMatcherSet creates a matcher set from pre-compiled patterns,
// checking that each carries enough capture groups.
func NewMatcherSet(epoch, relayStats, adversaryStats, circuit *regexp.Regexp) (*MatcherSet, error) {
	if epoch == nil || relayStats == nil || adversaryStats == nil || circuit == nil {
		return nil, fmt.Errorf("all four patterns are required")
	}
	if n := relayStats.NumSubexp(); n < relayStatsGroups {
		return nil, fmt.Errorf("relay stats pattern has %d capture groups, need %d", n, relayStatsGroups)
	}
	if n := adversaryStats.NumSubexp(); n < adversaryStatsGroups {
		return nil, fmt.Errorf("adversary stats pattern has %d capture groups, need %d", n, adversaryStatsGroups)
	}
	if n := circuit.NumSubexp(); n < circuitGroups {
		return nil, fmt.Errorf("circuit pattern has %d capture groups, need %d", n, circuitGroups)
	}

	return &MatcherSet{
		epoch:          epoch,
		relayStats:     relayStats,
		adversaryStats: adversaryStats,
		circuit:        circuit,
	}, nil
}

// DefaultMatcherSet returns a matcher set for the simulator's own output.
func DefaultMatcherSet() *MatcherSet {
	ms, err := NewMatcherSet(
		regexp.MustCompile(DefaultEpochPattern),
		regexp.MustCompile(DefaultRelayStatsPattern),
		regexp.MustCompile(DefaultAdversaryStatsPattern),
		regexp.MustCompile(DefaultCircuitPattern),
	)
	if err != nil {
		// The default patterns satisfy the arity checks.
		panic(err)
	}
	return ms
}

// Match tests a line against the patterns in priority order and returns
// the typed event for the first match. Returns nil if no pattern matches
// or a matched integer field cannot be parsed; such lines are skipped.
func (m *MatcherSet) Match(line string) Event {
	if m.epoch.MatchString(line) {
		return &EpochEvent{Consensus: ExtractConsensus(line)}
	}

	if sub := m.relayStats.FindStringSubmatch(line); sub != nil {
		total, err1 := strconv.Atoi(sub[1])
		guards, err2 := strconv.Atoi(sub[2])
		exits, err3 := strconv.Atoi(sub[3])
		if err1 != nil || err2 != nil || err3 != nil {
			return nil
		}
		return &RelayStatsEvent{TotalRelays: total, TotalGuards: guards, TotalExits: exits}
	}

	if sub := m.adversaryStats.FindStringSubmatch(line); sub != nil {
		guards, err1 := strconv.Atoi(sub[1])
		exits, err2 := strconv.Atoi(sub[2])
		if err1 != nil || err2 != nil {
			return nil
		}
		return &AdversaryStatsEvent{AdvGuards: guards, AdvExits: exits}
	}

	if sub := m.circuit.FindStringSubmatch(line); sub != nil {
		client, err := strconv.Atoi(sub[1])
		if err != nil || client < 0 {
			return nil
		}
		return &CircuitEvent{Client: client, Guard: sub[2], Middle: sub[3], Exit: sub[4]}
	}

	return nil
}
