// Package config provides settings loading and validation for tracestat.
package config

import (
	"regexp"
	"time"

	"tracestat/pkg/parser"
)

// Config is the root settings structure loaded from YAML. Every field is
// optional; an absent settings file means all defaults.
type Config struct {
	// AdversaryMarker is the suffix marking adversarial relays.
	AdversaryMarker string `yaml:"adversary_marker,omitempty"`

	// Patterns optionally overrides the trace line patterns.
	Patterns PatternConfig `yaml:"patterns,omitempty"`

	// Report holds rendering preferences.
	Report ReportConfig `yaml:"report,omitempty"`

	// Webhooks lists endpoints to notify after analysis.
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// PatternConfig overrides the regexes for the recognized line forms.
// Capture-group arity is checked during validation: relay_stats needs
// three groups, adversary_stats two, circuit four (client, guard,
// middle, exit).
type PatternConfig struct {
	Epoch          string `yaml:"epoch,omitempty"`
	RelayStats     string `yaml:"relay_stats,omitempty"`
	AdversaryStats string `yaml:"adversary_stats,omitempty"`
	Circuit        string `yaml:"circuit,omitempty"`

	// Compiled patterns (populated during validation)
	compiledEpoch          *regexp.Regexp
	compiledRelayStats     *regexp.Regexp
	compiledAdversaryStats *regexp.Regexp
	compiledCircuit        *regexp.Regexp
}

// ReportConfig holds rendering preferences.
type ReportConfig struct {
	// Format selects the report format: text or json.
	Format string `yaml:"format,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnCompromise fires only when compromised circuits
	// were observed (default).
	WebhookTriggerOnCompromise WebhookTrigger = "on_compromise"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending analysis reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR forms are
	// expanded from the environment.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_compromise" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// MatcherSet builds the matcher set from the compiled patterns.
// Validate must have run first.
func (c *Config) MatcherSet() (*parser.MatcherSet, error) {
	return parser.NewMatcherSet(
		c.Patterns.compiledEpoch,
		c.Patterns.compiledRelayStats,
		c.Patterns.compiledAdversaryStats,
		c.Patterns.compiledCircuit,
	)
}
