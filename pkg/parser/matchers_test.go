package parser

import (
	"regexp"
	"strings"
	"testing"
)

func TestMatcherSet_Match_Epoch(t *testing.T) {
	ms := DefaultMatcherSet()

	line := "[2023-04-01 12:00:00] Entering simulation epoch with consensus from 2023-04-01 12:00:00"
	event := ms.Match(line)

	epoch, ok := event.(*EpochEvent)
	if !ok {
		t.Fatalf("Match() = %T, want *EpochEvent", event)
	}
	if epoch.Consensus != "2023-04-01 12:00:00" {
		t.Errorf("Consensus = %q, want %q", epoch.Consensus, "2023-04-01 12:00:00")
	}
	if epoch.Kind() != KindEpoch {
		t.Errorf("Kind() = %q, want %q", epoch.Kind(), KindEpoch)
	}
}

func TestMatcherSet_Match_RelayStats(t *testing.T) {
	ms := DefaultMatcherSet()

	event := ms.Match("Total relays in consensus: 6500, Valid/Running Guards: 2500, Valid/Running Exits: 1200")

	stats, ok := event.(*RelayStatsEvent)
	if !ok {
		t.Fatalf("Match() = %T, want *RelayStatsEvent", event)
	}
	if stats.TotalRelays != 6500 || stats.TotalGuards != 2500 || stats.TotalExits != 1200 {
		t.Errorf("RelayStatsEvent = %+v, want {6500 2500 1200}", stats)
	}
}

func TestMatcherSet_Match_AdversaryStats(t *testing.T) {
	ms := DefaultMatcherSet()

	event := ms.Match("Total adversary guard relays: 100, Total adversary exit relays: 50")

	stats, ok := event.(*AdversaryStatsEvent)
	if !ok {
		t.Fatalf("Match() = %T, want *AdversaryStatsEvent", event)
	}
	if stats.AdvGuards != 100 || stats.AdvExits != 50 {
		t.Errorf("AdversaryStatsEvent = %+v, want {100 50}", stats)
	}
}

func TestMatcherSet_Match_Circuit(t *testing.T) {
	ms := DefaultMatcherSet()

	event := ms.Match("Client 42 uses the following circuit for a stream request: guard7* middle3 exit9*")

	circuit, ok := event.(*CircuitEvent)
	if !ok {
		t.Fatalf("Match() = %T, want *CircuitEvent", event)
	}
	if circuit.Client != 42 {
		t.Errorf("Client = %d, want 42", circuit.Client)
	}
	if circuit.Guard != "guard7*" || circuit.Middle != "middle3" || circuit.Exit != "exit9*" {
		t.Errorf("Relays = %q %q %q, want guard7* middle3 exit9*",
			circuit.Guard, circuit.Middle, circuit.Exit)
	}
}

func TestMatcherSet_Match_NoMatch(t *testing.T) {
	ms := DefaultMatcherSet()

	lines := []string{
		"",
		"random simulator chatter",
		"Client uses the following circuit for a stream request: a b c",
		"Total relays in consensus: many, Valid/Running Guards: 2, Valid/Running Exits: 1",
		"Entering simulation epoch", // no bracketed prefix, no "consensus from"
	}

	for _, line := range lines {
		if event := ms.Match(line); event != nil {
			t.Errorf("Match(%q) = %T, want nil", line, event)
		}
	}
}

func TestMatcherSet_Match_AtMostOnePattern(t *testing.T) {
	// A line matching the epoch pattern must not also be consumed as a
	// circuit line, even if a custom circuit pattern would match it.
	circuit := regexp.MustCompile(`(\d+).*consensus from (\S+) (\S+) (\S+)`)
	ms, err := NewMatcherSet(
		regexp.MustCompile(DefaultEpochPattern),
		regexp.MustCompile(DefaultRelayStatsPattern),
		regexp.MustCompile(DefaultAdversaryStatsPattern),
		circuit,
	)
	if err != nil {
		t.Fatalf("NewMatcherSet() error = %v", err)
	}

	line := "[1] Entering simulation epoch with consensus from a b c"
	if _, ok := ms.Match(line).(*EpochEvent); !ok {
		t.Errorf("Match(%q) = %T, want *EpochEvent (epoch has priority)", line, ms.Match(line))
	}
}

func TestNewMatcherSet_ArityChecks(t *testing.T) {
	epoch := regexp.MustCompile(DefaultEpochPattern)
	relay := regexp.MustCompile(DefaultRelayStatsPattern)
	adv := regexp.MustCompile(DefaultAdversaryStatsPattern)
	circuit := regexp.MustCompile(DefaultCircuitPattern)

	tests := []struct {
		name                             string
		epoch, relay, adversary, circuit *regexp.Regexp
		wantErr                          string
	}{
		{"nil pattern", nil, relay, adv, circuit, "required"},
		{"relay too few groups", epoch, regexp.MustCompile(`relays: (\d+)`), adv, circuit, "relay stats"},
		{"adversary too few groups", epoch, relay, regexp.MustCompile(`adv: (\d+)`), circuit, "adversary stats"},
		{"circuit too few groups", epoch, relay, adv, regexp.MustCompile(`Client (\d+): (\S+)`), "circuit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMatcherSet(tt.epoch, tt.relay, tt.adversary, tt.circuit)
			if err == nil {
				t.Fatal("NewMatcherSet() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestMatcherSet_Match_NegativeClientRejected(t *testing.T) {
	// A custom circuit pattern could capture a signed number; such lines
	// are skipped rather than producing a bogus client index.
	ms, err := NewMatcherSet(
		regexp.MustCompile(DefaultEpochPattern),
		regexp.MustCompile(DefaultRelayStatsPattern),
		regexp.MustCompile(DefaultAdversaryStatsPattern),
		regexp.MustCompile(`Client (-?\d+) circuit: (\S+) (\S+) (\S+)`),
	)
	if err != nil {
		t.Fatalf("NewMatcherSet() error = %v", err)
	}

	if event := ms.Match("Client -1 circuit: a b c"); event != nil {
		t.Errorf("Match() = %T, want nil for negative client index", event)
	}
}
