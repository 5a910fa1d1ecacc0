package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a settings file. Fields absent from the file
// keep their defaults.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and compiles the patterns.
// It must run before Config.MatcherSet, including on DefaultConfig.
func Validate(cfg *Config) error {
	if cfg.AdversaryMarker == "" {
		return errors.New("adversary_marker: must not be empty")
	}

	if err := validatePatterns(&cfg.Patterns); err != nil {
		return fmt.Errorf("patterns: %w", err)
	}

	switch cfg.Report.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("report.format: invalid format %q (use text or json)", cfg.Report.Format)
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validatePatterns(p *PatternConfig) error {
	var err error

	if p.compiledEpoch, err = compilePattern("epoch", p.Epoch, 0); err != nil {
		return err
	}
	if p.compiledRelayStats, err = compilePattern("relay_stats", p.RelayStats, 3); err != nil {
		return err
	}
	if p.compiledAdversaryStats, err = compilePattern("adversary_stats", p.AdversaryStats, 2); err != nil {
		return err
	}
	if p.compiledCircuit, err = compilePattern("circuit", p.Circuit, 4); err != nil {
		return err
	}

	return nil
}

func compilePattern(name, pattern string, minGroups int) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%s: pattern is required", name)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid pattern: %w", name, err)
	}

	if re.NumSubexp() < minGroups {
		return nil, fmt.Errorf("%s: pattern has %d capture groups, need %d",
			name, re.NumSubexp(), minGroups)
	}

	return re, nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case WebhookTriggerOnCompromise, WebhookTriggerAlways, WebhookTriggerNever:
	case "":
		wh.Trigger = WebhookTriggerOnCompromise
	default:
		return fmt.Errorf("invalid trigger %q (must be on_compromise, always, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}

	return s
}
