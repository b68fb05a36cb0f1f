package ratelimit

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Rule allows Limit requests per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// ParseRule parses "limit/window", e.g. "5/1m" or "120/60s".
func ParseRule(s string) (Rule, error) {
	var r Rule
	if err := r.UnmarshalText([]byte(s)); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// Validate reports whether the rule is usable.
func (r Rule) Validate() error {
	if r.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidRule, r.Limit)
	}
	if r.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %s", ErrInvalidRule, r.Window)
	}
	return nil
}

func (r Rule) String() string {
	return strconv.Itoa(r.Limit) + "/" + r.Window.String()
}

func (r *Rule) UnmarshalText(text []byte) error {
	limit, window, ok := strings.Cut(strings.TrimSpace(string(text)), "/")
	if !ok {
		return fmt.Errorf("%w: %q: expected limit/window", ErrInvalidRule, text)
	}
	n, err := strconv.Atoi(strings.TrimSpace(limit))
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidRule, text, err)
	}
	d, err := time.ParseDuration(strings.TrimSpace(window))
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidRule, text, err)
	}
	parsed := Rule{Limit: n, Window: d}
	if err := parsed.Validate(); err != nil {
		return err
	}
	*r = parsed
	return nil
}

// UnmarshalYAML accepts either the "limit/window" scalar form or a mapping
// with limit and window keys.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return r.UnmarshalText([]byte(node.Value))
	}
	var raw struct {
		Limit  int    `yaml:"limit"`
		Window string `yaml:"window"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return r.UnmarshalText([]byte(strconv.Itoa(raw.Limit) + "/" + raw.Window))
}

// Routes maps route ids to rules. It parses from "route=limit/window,..."
type Routes map[string]Rule

func (rs *Routes) UnmarshalText(text []byte) error {
	out := make(Routes)
	for part := range strings.SplitSeq(string(text), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		route, spec, ok := strings.Cut(part, "=")
		route = strings.TrimSpace(route)
		if !ok || route == "" {
			return fmt.Errorf("%w: %q: expected route=limit/window", ErrInvalidRule, part)
		}
		var rule Rule
		if err := rule.UnmarshalText([]byte(spec)); err != nil {
			return err
		}
		out[route] = rule
	}
	*rs = out
	return nil
}

// RuleSet is the immutable route table, enumerated once at startup.
type RuleSet struct {
	Default Rule
	Routes  Routes
}

// Rule returns the rule for the route, or the default.
func (s RuleSet) Rule(routeID string) Rule {
	if r, ok := s.Routes[routeID]; ok {
		return r
	}
	return s.Default
}

// RouteIDs returns the configured route ids in sorted order.
func (s RuleSet) RouteIDs() []string {
	return slices.Sorted(maps.Keys(s.Routes))
}

// Validate checks the default and every route.
func (s RuleSet) Validate() error {
	if err := s.Default.Validate(); err != nil {
		return fmt.Errorf("default: %w", err)
	}
	for id, r := range s.Routes {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("route %q: %w", id, err)
		}
	}
	return nil
}

// DefaultRoutes are applied unless overridden by configuration.
func DefaultRoutes() Routes {
	return Routes{
		"webhooks": {Limit: 120, Window: 60 * time.Second},
		"refresh":  {Limit: 5, Window: time.Minute},
	}
}

type rulesFile struct {
	Default *Rule  `yaml:"default"`
	Routes  Routes `yaml:"routes"`
}

// LoadRules builds the rule set: built-in defaults, then the YAML file if
// configured, then the RATELIMIT_ROUTES entries. Later sources win per route.
func LoadRules(cfg Config) (RuleSet, error) {
	set := RuleSet{Default: cfg.Default, Routes: DefaultRoutes()}

	if cfg.RoutesFile != "" {
		data, err := os.ReadFile(cfg.RoutesFile)
		if err != nil {
			return RuleSet{}, fmt.Errorf("read rate limit rules: %w", err)
		}
		var f rulesFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return RuleSet{}, fmt.Errorf("parse rate limit rules: %w", err)
		}
		if f.Default != nil {
			set.Default = *f.Default
		}
		maps.Copy(set.Routes, f.Routes)
	}
	maps.Copy(set.Routes, cfg.Routes)

	if err := set.Validate(); err != nil {
		return RuleSet{}, err
	}
	return set, nil
}
