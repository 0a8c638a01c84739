// Package intent aggregates a lead's behavioral signals into a calibrated
// 0-100 buying-intent score with recency decay and buying-committee
// detection.
package intent

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/okian/scout/internal/domain/lead"
	"github.com/okian/scout/internal/domain/signal"
)

// Label classifies a score into engagement bands.
type Label string

// Intent labels.
const (
	LabelHigh   Label = "high"
	LabelMedium Label = "medium"
	LabelLow    Label = "low"
)

// Logit calibration constants. The bias starts every lead cold; the scale
// converts one point of weighted signal mass into logit movement. Committee
// boosts land directly on the logit so a second engaged contact moves the
// needle even when raw mass is modest.
const (
	logitBias         = -3.0
	logitScale        = 0.1
	logitClamp        = 50.0
	strongCommittee   = 1.5
	weakCommittee     = 1.2
	strongLogitBoost  = 1.5
	weakLogitBoost    = 0.8
	defaultBaseWeight = 5.0
)

// Config is the immutable scoring table set. Construct once, share by
// reference.
type Config struct {
	// SignalWeights maps a signal type to its base weight. Unknown types
	// fall back to DefaultWeight.
	SignalWeights map[signal.Type]float64

	// DefaultWeight applies to signal types missing from SignalWeights.
	DefaultWeight float64

	// ActionModifiers scale a signal by the action recorded in its
	// payload, matched by substring (share > comment > like/visit).
	ActionModifiers map[string]float64

	// HalfLife is the recency-decay half-life.
	HalfLife time.Duration

	// CommitteeWindow bounds how far back committee detection looks.
	CommitteeWindow time.Duration

	// HighThreshold and MediumThreshold split scores into labels.
	HighThreshold   float64
	MediumThreshold float64
}

// DefaultConfig returns the stock scoring tables.
func DefaultConfig() Config {
	return Config{
		SignalWeights: map[signal.Type]float64{
			signal.TypeContentEngagement: 10.0,
			signal.TypeProfileVisit:      15.0,
			signal.TypeFundingRound:      40.0,
			signal.TypeRoleChange:        25.0,
			signal.TypeEventAttendance:   20.0,
			signal.TypeDemoRequest:       70.0,
			signal.TypePricingPageVisit:  35.0,
		},
		DefaultWeight: defaultBaseWeight,
		ActionModifiers: map[string]float64{
			"like":    1.0,
			"comment": 2.0,
			"share":   3.0,
			"visit":   1.0,
		},
		HalfLife:        signal.DefaultIntentHalfLife,
		CommitteeWindow: 30 * 24 * time.Hour,
		HighThreshold:   70.0,
		MediumThreshold: 30.0,
	}
}

// SignalBreakdown is the per-signal audit entry in a Score.
type SignalBreakdown struct {
	Type      signal.Type
	Weight    float64
	Decay     float64
	Timestamp time.Time
}

// Score is the result of one intent evaluation. Never mutated after
// construction.
type Score struct {
	Score           float64 // calibrated 0-100
	Label           Label
	SignalsScore    float64 // raw weighted signal mass before calibration
	RecencyFactor   float64 // decay of the first signal, 0.0 when empty
	CommitteeFactor float64
	Breakdown       []SignalBreakdown
	Logits          float64
}

// Scorer computes intent scores. Safe for concurrent use.
type Scorer struct {
	cfg Config
	now func() time.Time
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithConfig replaces the default scoring tables.
func WithConfig(cfg Config) Option {
	return func(s *Scorer) { s.cfg = cfg }
}

// WithClock overrides the wall clock, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScorer creates a Scorer with default tables unless overridden.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{cfg: DefaultConfig(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.DefaultWeight <= 0 {
		s.cfg.DefaultWeight = defaultBaseWeight
	}
	return s
}

// Config exposes the active scoring tables.
func (s *Scorer) Config() Config { return s.cfg }

// Score evaluates a lead's signals. The lead and its company-wide signal
// slice are optional; when both are present, committee detection boosts the
// score. The result is bounded to [0,100] and monotonic in weighted signal
// mass and the committee multiplier.
func (s *Scorer) Score(signals []signal.Event, l *lead.Lead, companySignals []signal.Event) Score {
	now := s.now()
	logits := logitBias
	var totalWeight float64
	breakdown := make([]SignalBreakdown, 0, len(signals))

	for _, ev := range signals {
		base := s.baseWeight(ev.Type)
		modifier := s.actionModifier(ev.Payload)
		decay := ev.DecayWeight(s.cfg.HalfLife, now)

		weight := base * modifier * ev.Strength * decay
		totalWeight += weight
		logits += weight * logitScale

		breakdown = append(breakdown, SignalBreakdown{
			Type:      ev.Type,
			Weight:    round2(weight),
			Decay:     round2(decay),
			Timestamp: ev.Timestamp,
		})
	}

	committee := 1.0
	if l != nil && l.Company != nil && len(companySignals) > 0 {
		committee = s.DetectCommittee(l.SubjectID, companySignals, now)
		if committee > 1.0 {
			if committee >= strongCommittee {
				logits += strongLogitBoost
			} else {
				logits += weakLogitBoost
			}
		}
	}

	finalScore := sigmoid(logits) * 100.0

	recency := 0.0
	if len(signals) > 0 {
		recency = signals[0].DecayWeight(s.cfg.HalfLife, now)
	}

	return Score{
		Score:           round1(finalScore),
		Label:           s.label(finalScore),
		SignalsScore:    round1(totalWeight),
		RecencyFactor:   recency,
		CommitteeFactor: committee,
		Breakdown:       breakdown,
		Logits:          round2(logits),
	}
}

// DetectCommittee returns the buying-committee multiplier for a lead given
// all signals observed at the same company: 1.0 with no other active
// contact inside the window, 1.2 with exactly one, 1.5 with two or more.
func (s *Scorer) DetectCommittee(subjectID string, companySignals []signal.Event, now time.Time) float64 {
	if len(companySignals) == 0 {
		return 1.0
	}
	cutoff := now.Add(-s.cfg.CommitteeWindow)
	others := make(map[string]struct{})
	for _, ev := range companySignals {
		if !ev.Timestamp.After(cutoff) {
			continue
		}
		if ev.SubjectID == "" || ev.SubjectID == subjectID {
			continue
		}
		others[ev.SubjectID] = struct{}{}
	}
	switch {
	case len(others) >= 2:
		return strongCommittee
	case len(others) == 1:
		return weakCommittee
	default:
		return 1.0
	}
}

func (s *Scorer) baseWeight(t signal.Type) float64 {
	if w, ok := s.cfg.SignalWeights[t]; ok {
		return w
	}
	return s.cfg.DefaultWeight
}

// actionModifier resolves the payload action against the modifier table by
// substring match, so "series_a" payload actions still match generic keys
// and "profile visit" payloads hit "visit".
func (s *Scorer) actionModifier(p signal.Payload) float64 {
	if p == nil {
		return 1.0
	}
	action := strings.ToLower(p.Action())
	if action == "" {
		return 1.0
	}
	// Sorted keys keep the substring lookup deterministic.
	keys := make([]string, 0, len(s.cfg.ActionModifiers))
	for key := range s.cfg.ActionModifiers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.Contains(action, key) {
			return s.cfg.ActionModifiers[key]
		}
	}
	return 1.0
}

func (s *Scorer) label(score float64) Label {
	switch {
	case score >= s.cfg.HighThreshold:
		return LabelHigh
	case score >= s.cfg.MediumThreshold:
		return LabelMedium
	default:
		return LabelLow
	}
}

// sigmoid squashes a logit to (0,1), clamped to avoid overflow.
func sigmoid(x float64) float64 {
	x = math.Max(-logitClamp, math.Min(logitClamp, x))
	return 1.0 / (1.0 + math.Exp(-x))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
