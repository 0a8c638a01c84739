// Package engage decides whether a scored lead qualifies for outreach.
// The filter applies exclusion rules first, then fit and intent
// thresholds, and returns an auditable decision record.
package engage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/scout/internal/domain/intent"
	"github.com/okian/scout/internal/domain/lead"
)

// Priority orders qualified leads for the outreach queue.
type Priority string

const (
	// PriorityHigh means immediate outreach.
	PriorityHigh Priority = "high"
	// PriorityMedium means queue for nurture.
	PriorityMedium Priority = "medium"
	// PriorityLow means skip.
	PriorityLow Priority = "low"
)

// ReasonQualified is the reason attached to every positive decision.
const ReasonQualified = "High Intent + High ICP Match"

// Config carries the engagement thresholds and exclusion lists. It is a
// value object: build it once at startup and share it by reference.
type Config struct {
	// MinIntentScore is the floor a lead's intent score must reach.
	MinIntentScore float64
	// MinICPScore is the floor a lead's ICP score must reach.
	MinICPScore float64
	// Competitors lists company-name fragments that block outreach.
	Competitors []string
	// ExcludedDomains lists website fragments that block outreach.
	ExcludedDomains []string
	// MaxDailyMessages caps sends per day. The cap is enforced by an
	// external rate limiter; the filter only carries the value.
	MaxDailyMessages int
}

// DefaultConfig returns the stock thresholds with empty exclusion lists.
func DefaultConfig() Config {
	return Config{
		MinIntentScore:   70.0,
		MinICPScore:      80.0,
		MaxDailyMessages: 50,
	}
}

// Decision is the outcome of one filter evaluation.
type Decision struct {
	ID           string
	ShouldEngage bool
	Priority     Priority
	Reason       string
	DecidedAt    time.Time
}

// Excluded reports whether the decision was short-circuited by an
// exclusion rule rather than a threshold check.
func (d Decision) Excluded() bool {
	return strings.HasPrefix(d.Reason, "Exclusion: ")
}

// Filter gates automated outreach to high-fit, high-intent leads.
type Filter struct {
	cfg Config
	now func() time.Time
	id  func() string
}

// Option customizes a Filter.
type Option func(*Filter)

// WithConfig replaces the default thresholds and exclusion lists.
func WithConfig(cfg Config) Option {
	return func(f *Filter) { f.cfg = cfg }
}

// WithClock overrides the decision timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(f *Filter) {
		if now != nil {
			f.now = now
		}
	}
}

// WithIDSource overrides the decision ID generator. Used in tests.
func WithIDSource(id func() string) Option {
	return func(f *Filter) {
		if id != nil {
			f.id = id
		}
	}
}

// NewFilter builds a Filter with the given options applied over defaults.
func NewFilter(opts ...Option) *Filter {
	f := &Filter{
		cfg: DefaultConfig(),
		now: time.Now,
		id:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Config returns the thresholds in effect.
func (f *Filter) Config() Config { return f.cfg }

// Evaluate applies, in order, the exclusion rules, the ICP threshold,
// and the intent threshold. Exclusions short-circuit regardless of
// scores. Failing ICP drops the lead; failing only intent parks it for
// nurture. Identical inputs always produce the same verdict, priority,
// and reason.
func (f *Filter) Evaluate(l *lead.Lead, intentScore intent.Score, icpScore float64) Decision {
	d := Decision{
		ID:        f.id(),
		DecidedAt: f.now(),
	}

	if reason := f.exclusionReason(l); reason != "" {
		d.ShouldEngage = false
		d.Priority = PriorityLow
		d.Reason = "Exclusion: " + reason
		return d
	}

	intentPass := intentScore.Score >= f.cfg.MinIntentScore
	icpPass := icpScore >= f.cfg.MinICPScore

	switch {
	case intentPass && icpPass:
		d.ShouldEngage = true
		d.Priority = PriorityHigh
		d.Reason = ReasonQualified
	case !icpPass:
		d.ShouldEngage = false
		d.Priority = PriorityLow
		d.Reason = fmt.Sprintf("ICP Score %.1f < %.1f", icpScore, f.cfg.MinICPScore)
	default:
		d.ShouldEngage = false
		d.Priority = PriorityMedium
		d.Reason = fmt.Sprintf("Intent Score %.1f < %.1f", intentScore.Score, f.cfg.MinIntentScore)
	}
	return d
}

// exclusionReason returns a non-empty reason when the lead's company
// matches an exclusion rule. Competitor fragments match the company
// name; excluded domains match the website.
func (f *Filter) exclusionReason(l *lead.Lead) string {
	if l == nil || l.Company == nil {
		return ""
	}

	name := strings.ToLower(l.Company.Name)
	for _, competitor := range f.cfg.Competitors {
		if competitor == "" {
			continue
		}
		if strings.Contains(name, strings.ToLower(competitor)) {
			return "Competitor detected"
		}
	}

	if site := strings.ToLower(l.Company.Website); site != "" {
		for _, excluded := range f.cfg.ExcludedDomains {
			if excluded == "" {
				continue
			}
			if strings.Contains(site, strings.ToLower(excluded)) {
				return "Excluded domain"
			}
		}
	}
	return ""
}
