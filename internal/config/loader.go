package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if SCOUT_CONFIG is set
//  3. env (prefix SCOUT_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SCOUT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SCOUT_ADDR, SCOUT_QUEUE_SIZE, ...
	// Map env keys like SCOUT_QUEUE_SIZE -> queue_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SCOUT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "scout_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects structurally broken configurations early, before the
// service wires any component to them.
func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.ICPSizeMin < 0 || c.ICPSizeMax < c.ICPSizeMin {
		return fmt.Errorf("%w: icp size range [%d,%d] is malformed", ErrInvalidConfig, c.ICPSizeMin, c.ICPSizeMax)
	}
	if c.IntentHalfLifeHours <= 0 {
		return fmt.Errorf("%w: intent half-life must be positive", ErrInvalidConfig)
	}
	if c.IntentMediumThreshold > c.IntentHighThreshold {
		return fmt.Errorf("%w: medium threshold exceeds high threshold", ErrInvalidConfig)
	}
	if c.ClassifierLatencyMinMS < 0 || c.ClassifierLatencyMaxMS < c.ClassifierLatencyMinMS {
		return fmt.Errorf("%w: classifier latency bounds are malformed", ErrInvalidConfig)
	}
	return nil
}
