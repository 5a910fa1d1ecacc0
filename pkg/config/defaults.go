package config

import (
	"os"
	"time"

	"tracestat/pkg/analyzer"
	"tracestat/pkg/parser"
)

// Default values for configuration.
const (
	DefaultFormat         = "text"
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvAdversaryMarker = "TRACESTAT_ADVERSARY_MARKER"
)

// DefaultConfig returns a configuration matching the simulator's own
// trace output.
func DefaultConfig() *Config {
	return &Config{
		AdversaryMarker: analyzer.DefaultAdversaryMarker,
		Patterns: PatternConfig{
			Epoch:          parser.DefaultEpochPattern,
			RelayStats:     parser.DefaultRelayStatsPattern,
			AdversaryStats: parser.DefaultAdversaryStatsPattern,
			Circuit:        parser.DefaultCircuitPattern,
		},
		Report: ReportConfig{
			Format: DefaultFormat,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides.
func (c *Config) applyEnvironmentOverrides() {
	if marker := os.Getenv(EnvAdversaryMarker); marker != "" {
		c.AdversaryMarker = marker
	}
}
