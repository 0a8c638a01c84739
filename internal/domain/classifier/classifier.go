// Package classifier provides the secondary lead classifier collaborator.
// The pipeline consults it for an auxiliary buy probability that is
// surfaced alongside the rule-based intent score, never blended into it.
package classifier

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Default stub configuration constants.
const (
	defaultTokenWeight = 0.1
	defaultMinLatency  = 80 * time.Millisecond
	defaultMaxLatency  = 150 * time.Millisecond
	defaultRandomSeed  = 42
)

// Classifier predicts a buy probability in [0,1] from feature tokens.
// Implementations may call out to a model service and must honor ctx.
type Classifier interface {
	Predict(ctx context.Context, tokens []string) (float64, error)
}

// Option applies a configuration option to the Stub.
type Option func(*Stub)

// WithLatencyRange sets the simulated inference latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *Stub) {
		if minLatency > 0 && maxLatency > minLatency {
			s.minLatency = minLatency
			s.maxLatency = maxLatency
		}
	}
}

// WithTokenWeights sets per-token logit contributions from a
// configuration map. The map is copied to avoid external modification.
func WithTokenWeights(weights map[string]float64, defaultWeight float64) Option {
	return func(s *Stub) {
		s.tokenWeights = make(map[string]float64, len(weights))
		for token, weight := range weights {
			s.tokenWeights[token] = weight
		}
		if defaultWeight != 0 {
			s.defaultWeight = defaultWeight
		}
	}
}

// WithSeed sets the RNG seed for the simulated latency draw.
func WithSeed(seed int64) Option {
	return func(s *Stub) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible testing
	}
}

// Stub implements Classifier with a token-weight model and simulated
// inference latency, standing in for a real model service.
type Stub struct {
	// Per-token logit contributions
	tokenWeights  map[string]float64
	defaultWeight float64
	// Simulated latency range
	minLatency time.Duration
	maxLatency time.Duration
	// Random source for the latency draw. rand.Rand is not safe for
	// concurrent use and Predict is called from the batch fan-out and
	// the worker pool at once.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewStub creates a stub classifier with configuration options applied.
func NewStub(opts ...Option) *Stub {
	s := &Stub{
		tokenWeights:  defaultTokenWeights(),
		defaultWeight: defaultTokenWeight,
		minLatency:    defaultMinLatency,
		maxLatency:    defaultMaxLatency,
		rng:           rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible testing
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// defaultTokenWeights mirrors how a trained model separates hot and cold
// leads: strong buying signals push the logit up, stale tenure and
// bootstrap funding pull it down.
func defaultTokenWeights() map[string]float64 {
	return map[string]float64{
		TokenTenureNew:        0.3,
		TokenTenureShort:      0.2,
		TokenTenureMid:        0.0,
		TokenTenureLong:       -0.2,
		TokenFundingBootstrap: -0.4,
		TokenFundingSeed:      0.1,
		TokenFundingSeriesA:   0.4,
		TokenFundingGrowth:    0.6,
		TokenMomentumDecline:  -0.5,
		TokenMomentumStable:   0.0,
		TokenMomentumAccel:    0.6,

		"SIGNAL_DEMO_REQUEST":       2.0,
		"SIGNAL_PRICING_PAGE_VISIT": 1.2,
		"SIGNAL_FUNDING_ROUND":      1.0,
		"SIGNAL_ROLE_CHANGE":        0.6,
		"SIGNAL_EVENT_ATTENDANCE":   0.5,
		"SIGNAL_PROFILE_VISIT":      0.4,
		"SIGNAL_CONTENT_ENGAGEMENT": 0.3,
	}
}

// Predict sums token weights into a logit and squashes it to [0,1].
// Inference latency is simulated; ctx cancellation aborts the call.
func (s *Stub) Predict(ctx context.Context, tokens []string) (float64, error) {
	s.rngMu.Lock()
	jitter := time.Duration(s.rng.Int63n(int64(s.maxLatency - s.minLatency)))
	s.rngMu.Unlock()
	latency := s.minLatency + jitter
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("context cancelled: %w", ctx.Err())
	case <-time.After(latency):
	}

	logit := -1.0 // prior: most leads do not convert
	for _, token := range tokens {
		if token == TokenStart || token == TokenEnd || token == TokenPad {
			continue
		}
		weight, ok := s.tokenWeights[token]
		if !ok {
			weight = s.defaultWeight
		}
		logit += weight
	}

	return sigmoid(logit), nil
}

func sigmoid(x float64) float64 {
	if x > 50 {
		x = 50
	} else if x < -50 {
		x = -50
	}
	return 1.0 / (1.0 + math.Exp(-x))
}
