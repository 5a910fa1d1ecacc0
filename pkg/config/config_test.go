package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tracestat/pkg/parser"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate(DefaultConfig()) error = %v", err)
	}

	ms, err := cfg.MatcherSet()
	if err != nil {
		t.Fatalf("MatcherSet() error = %v", err)
	}
	if ms == nil {
		t.Fatal("MatcherSet() returned nil")
	}
	if cfg.AdversaryMarker != "*" {
		t.Errorf("AdversaryMarker = %q, want *", cfg.AdversaryMarker)
	}
	if cfg.Report.Format != "text" {
		t.Errorf("Report.Format = %q, want text", cfg.Report.Format)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "adversary_marker: \"!\"\n")

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AdversaryMarker != "!" {
		t.Errorf("AdversaryMarker = %q, want !", cfg.AdversaryMarker)
	}
	if cfg.Patterns.Circuit != parser.DefaultCircuitPattern {
		t.Errorf("circuit pattern overridden unexpectedly: %q", cfg.Patterns.Circuit)
	}
}

func TestLoad_PatternOverride(t *testing.T) {
	path := writeConfig(t, `
patterns:
  circuit: 'client=(\d+) path=(\S+),(\S+),(\S+)'
`)

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ms, err := cfg.MatcherSet()
	if err != nil {
		t.Fatalf("MatcherSet() error = %v", err)
	}

	event := ms.Match("client=7 path=g*,m,x")
	circuit, ok := event.(*parser.CircuitEvent)
	if !ok {
		t.Fatalf("Match() = %T, want *CircuitEvent", event)
	}
	if circuit.Client != 7 || circuit.Guard != "g*" {
		t.Errorf("CircuitEvent = %+v", circuit)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "adversary_marker: [unclosed\n  nonsense: {")

	if _, err := Load(context.Background(), path); err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty marker",
			mutate:  func(c *Config) { c.AdversaryMarker = "" },
			wantErr: "adversary_marker",
		},
		{
			name:    "invalid pattern",
			mutate:  func(c *Config) { c.Patterns.Epoch = "[unclosed" },
			wantErr: "epoch",
		},
		{
			name:    "circuit pattern arity",
			mutate:  func(c *Config) { c.Patterns.Circuit = `Client (\d+)` },
			wantErr: "capture groups",
		},
		{
			name:    "relay pattern arity",
			mutate:  func(c *Config) { c.Patterns.RelayStats = `relays: (\d+), guards: (\d+)` },
			wantErr: "capture groups",
		},
		{
			name:    "bad format",
			mutate:  func(c *Config) { c.Report.Format = "xml" },
			wantErr: "format",
		},
		{
			name:    "webhook without url",
			mutate:  func(c *Config) { c.Webhooks = []WebhookConfig{{Name: "x"}} },
			wantErr: "url is required",
		},
		{
			name:    "webhook bad scheme",
			mutate:  func(c *Config) { c.Webhooks = []WebhookConfig{{URL: "ftp://example.com"}} },
			wantErr: "scheme",
		},
		{
			name:    "webhook bad trigger",
			mutate:  func(c *Config) { c.Webhooks = []WebhookConfig{{URL: "https://example.com", Trigger: "sometimes"}} },
			wantErr: "trigger",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_WebhookDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{URL: "https://example.com/hook"}}

	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	wh := cfg.Webhooks[0]
	if wh.Trigger != WebhookTriggerOnCompromise {
		t.Errorf("Trigger = %q, want on_compromise", wh.Trigger)
	}
	if wh.Timeout != 10*time.Second {
		t.Errorf("Timeout = %s, want 10s", wh.Timeout)
	}
}

func TestValidate_TokenEnvExpansion(t *testing.T) {
	t.Setenv("TRACESTAT_TEST_TOKEN", "secret")

	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{URL: "https://example.com", Token: "${TRACESTAT_TEST_TOKEN}"}}

	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Webhooks[0].Token != "secret" {
		t.Errorf("Token = %q, want expanded secret", cfg.Webhooks[0].Token)
	}
}

func TestLoad_EnvMarkerOverride(t *testing.T) {
	t.Setenv(EnvAdversaryMarker, "%")

	path := writeConfig(t, "adversary_marker: \"!\"\n")
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AdversaryMarker != "%" {
		t.Errorf("AdversaryMarker = %q, want env override %%", cfg.AdversaryMarker)
	}
}
