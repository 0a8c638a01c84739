// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RescoreQueueSize bounds the in-memory rescore queue.
	RescoreQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of rescore workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the signal deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxTopLimit caps GET /v1/leads/top?limit.
	MaxTopLimit int `koanf:"max_top_limit"`

	// ClassifierLatencyMinMS and ClassifierLatencyMaxMS bound the
	// simulated secondary-model inference latency.
	ClassifierLatencyMinMS int `koanf:"classifier_latency_min_ms"`
	ClassifierLatencyMaxMS int `koanf:"classifier_latency_max_ms"`

	// SignalWeights maps signal types to their base intent weights.
	SignalWeights map[string]float64 `koanf:"signal_weights"`

	// DefaultSignalWeight is used for unknown signal types.
	DefaultSignalWeight float64 `koanf:"default_signal_weight"`

	// ActionModifiers maps payload action fragments to multipliers.
	ActionModifiers map[string]float64 `koanf:"action_modifiers"`

	// IntentHalfLifeHours controls signal recency decay for scoring.
	IntentHalfLifeHours float64 `koanf:"intent_half_life_hours"`

	// CommitteeWindowDays bounds buying-committee detection.
	CommitteeWindowDays int `koanf:"committee_window_days"`

	// IntentHighThreshold and IntentMediumThreshold set label bands.
	IntentHighThreshold   float64 `koanf:"intent_high_threshold"`
	IntentMediumThreshold float64 `koanf:"intent_medium_threshold"`

	// ICP target profile.
	ICPSizeMin          int                `koanf:"icp_size_min"`
	ICPSizeMax          int                `koanf:"icp_size_max"`
	ICPTargetIndustries []string           `koanf:"icp_target_industries"`
	ICPTargetTech       []string           `koanf:"icp_target_tech"`
	ICPMinFundingStage  string             `koanf:"icp_min_funding_stage"`
	ICPWeights          map[string]float64 `koanf:"icp_weights"`

	// Hybrid gate thresholds.
	MinIntentForEngagement float64 `koanf:"min_intent_for_engagement"`
	ICPEngageThreshold     float64 `koanf:"icp_engage_threshold"`
	SemanticFitThreshold   float64 `koanf:"semantic_fit_threshold"`

	// Engagement gate.
	MinIntentScore   float64  `koanf:"min_intent_score"`
	MinICPScore      float64  `koanf:"min_icp_score"`
	Competitors      []string `koanf:"competitors"`
	ExcludedDomains  []string `koanf:"excluded_domains"`
	MaxDailyMessages int      `koanf:"max_daily_messages"`

	// Sender profile used for semantic fit and attention weighting.
	SenderName        string   `koanf:"sender_name"`
	SenderDescription string   `koanf:"sender_description"`
	SenderIndustries  []string `koanf:"sender_industries"`

	// EmbeddingDim sets the embedding vector dimension.
	EmbeddingDim int `koanf:"embedding_dim"`
}

// New creates a Config using provided options. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use (e.g.,
// loading from env/files) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		RescoreQueueSize:       100_000,
		WorkerCount:            runtime.NumCPU() * 4,
		DedupeSize:             500_000,
		MaxTopLimit:            100,
		ClassifierLatencyMinMS: 80,
		ClassifierLatencyMaxMS: 150,
		SignalWeights: map[string]float64{
			"content_engagement": 10.0,
			"profile_visit":      15.0,
			"funding_round":      40.0,
			"role_change":        25.0,
			"event_attendance":   20.0,
			"demo_request":       70.0,
			"pricing_page_visit": 35.0,
		},
		DefaultSignalWeight: 5.0,
		ActionModifiers: map[string]float64{
			"like":    1.0,
			"comment": 2.0,
			"share":   3.0,
			"visit":   1.0,
		},
		IntentHalfLifeHours:   72.0,
		CommitteeWindowDays:   30,
		IntentHighThreshold:   70.0,
		IntentMediumThreshold: 30.0,
		ICPSizeMin:            50,
		ICPSizeMax:            500,
		ICPTargetIndustries:   []string{"saas", "fintech"},
		ICPTargetTech:         []string{"python", "aws", "kubernetes"},
		ICPMinFundingStage:    "seed",
		ICPWeights: map[string]float64{
			"size":       0.20,
			"industry":   0.25,
			"tech_stack": 0.15,
			"funding":    0.15,
			"authority":  0.25,
		},
		MinIntentForEngagement: 30.0,
		ICPEngageThreshold:     80.0,
		SemanticFitThreshold:   80.0,
		MinIntentScore:         70.0,
		MinICPScore:            80.0,
		MaxDailyMessages:       50,
		SenderName:             "scout",
		SenderDescription:      "signal-driven outbound automation for b2b sales teams",
		SenderIndustries:       []string{"saas", "fintech"},
		EmbeddingDim:           128,
	}
	return c
}
