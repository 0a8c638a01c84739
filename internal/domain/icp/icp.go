// Package icp scores leads against an Ideal Customer Profile across five
// dimensions: company size, industry, tech stack, funding stage, and the
// contact's authority level.
package icp

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/scout/internal/domain/lead"
)

// Authority labels attached to the composite result.
const (
	AuthorityDecisionMaker = "decision_maker"
	AuthorityInfluencer    = "influencer"
)

// Dimension names used in score breakdowns and weight maps.
const (
	DimSize      = "size"
	DimIndustry  = "industry"
	DimTechStack = "tech_stack"
	DimFunding   = "funding"
	DimAuthority = "authority"
)

// Funding-stage scores, monotonic with stage maturity. Unknown stages score
// 0.4; a missing stage scores 0.3.
var fundingScores = map[string]float64{
	"pre_seed": 0.3,
	"seed":     0.4,
	"series_a": 0.6,
	"series_b": 0.8,
	"series_c": 0.9,
	"series_d": 0.95,
	"ipo":      1.0,
	"public":   1.0,
}

const (
	unknownStageScore = 0.4
	missingStageScore = 0.3
)

// Authority scores by seniority level.
var authorityScores = map[lead.Seniority]float64{
	lead.SeniorityCLevel:   1.0,
	lead.SeniorityVP:       0.9,
	lead.SeniorityDirector: 0.8,
	lead.SeniorityManager:  0.6,
	lead.SeniorityIC:       0.3,
	lead.SeniorityUnknown:  0.2,
}

// decisionMakerLevels is the set of seniorities treated as decision makers.
var decisionMakerLevels = map[lead.Seniority]bool{
	lead.SeniorityCLevel:   true,
	lead.SeniorityVP:       true,
	lead.SeniorityDirector: true,
}

// Config is the immutable ICP definition. Construct once at startup and
// share by reference; it is never mutated per call.
type Config struct {
	SizeMin          int
	SizeMax          int
	TargetIndustries []string
	TargetTechStack  []string
	MinFundingStage  string
	Weights          map[string]float64
}

// DefaultConfig returns the stock mid-market SaaS/fintech profile.
func DefaultConfig() Config {
	return Config{
		SizeMin:          50,
		SizeMax:          500,
		TargetIndustries: []string{"saas", "fintech"},
		Weights: map[string]float64{
			DimSize:      0.20,
			DimIndustry:  0.25,
			DimTechStack: 0.15,
			DimFunding:   0.15,
			DimAuthority: 0.25,
		},
	}
}

// Validate checks that dimension weights sum to approximately 1.0.
func (c Config) Validate() error {
	var total float64
	for _, w := range c.Weights {
		total += w
	}
	if total < 0.99 || total > 1.01 {
		return fmt.Errorf("validate icp config: %w: weights sum to %.3f", ErrInvalidWeights, total)
	}
	return nil
}

// Result is the composite ICP score for one lead.
type Result struct {
	Score     float64            // weighted composite, 0-100
	Breakdown map[string]float64 // per-dimension score, each 0-1
	Authority string             // decision_maker or influencer
}

// Matcher computes ICP scores. Safe for concurrent use; the config is read
// only.
type Matcher struct {
	cfg Config
}

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithConfig replaces the default ICP definition.
func WithConfig(cfg Config) Option {
	return func(m *Matcher) { m.cfg = cfg }
}

// NewMatcher creates a Matcher with the default profile unless overridden.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config exposes the active ICP definition.
func (m *Matcher) Config() Config { return m.cfg }

// Score computes the weighted composite for a lead. Either part may be nil;
// missing data falls back to the neutral per-dimension defaults.
func (m *Matcher) Score(company *lead.Company, contact *lead.Contact) Result {
	sizeScore := 0.0
	industryScore := 0.0
	techScore := 0.5
	fundingScore := missingStageScore
	authorityScore := authorityScores[lead.SeniorityUnknown]
	authority := AuthorityInfluencer

	if company != nil {
		sizeScore = m.ScoreSize(company.Size)
		industryScore = m.ScoreIndustry(company.Industry)
		techScore = m.ScoreTechStack(company.TechStack)
		fundingScore = m.ScoreFunding(company.FundingStage)
	}
	if contact != nil {
		authority, authorityScore = m.ScoreAuthority(contact.Title, contact.Seniority)
	}

	w := m.cfg.Weights
	weighted := sizeScore*w[DimSize] +
		industryScore*w[DimIndustry] +
		techScore*w[DimTechStack] +
		fundingScore*w[DimFunding] +
		authorityScore*w[DimAuthority]

	return Result{
		Score: round1(weighted * 100),
		Breakdown: map[string]float64{
			DimSize:      round2(sizeScore),
			DimIndustry:  round2(industryScore),
			DimTechStack: round2(techScore),
			DimFunding:   round2(fundingScore),
			DimAuthority: round2(authorityScore),
		},
		Authority: authority,
	}
}

// ScoreSize scores employee count against the configured range: 1.0 inside
// the range, a linear ratio toward the nearest bound outside it.
func (m *Matcher) ScoreSize(size int) float64 {
	if size <= 0 {
		return 0.0
	}
	minSize, maxSize := m.cfg.SizeMin, m.cfg.SizeMax
	if size >= minSize && size <= maxSize {
		return 1.0
	}
	if size < minSize {
		return math.Max(0.0, float64(size)/float64(minSize))
	}
	return math.Max(0.0, float64(maxSize)/float64(size))
}

// ScoreIndustry is a binary match against the target-industry list,
// case-insensitive.
func (m *Matcher) ScoreIndustry(industry lead.Industry) float64 {
	v := strings.ToLower(string(industry))
	for _, t := range m.cfg.TargetIndustries {
		if strings.ToLower(t) == v {
			return 1.0
		}
	}
	return 0.0
}

// ScoreTechStack scores overlap between the lead's stack and the target
// stack. No configured target stack is neutral (0.5); an empty lead stack
// against a configured target scores 0.
func (m *Matcher) ScoreTechStack(stack []string) float64 {
	targets := m.cfg.TargetTechStack
	if len(targets) == 0 {
		return 0.5
	}
	if len(stack) == 0 {
		return 0.0
	}
	have := make(map[string]bool, len(stack))
	for _, t := range stack {
		have[strings.ToLower(t)] = true
	}
	overlap := 0
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		k := strings.ToLower(t)
		if seen[k] {
			continue
		}
		seen[k] = true
		if have[k] {
			overlap++
		}
	}
	return math.Min(1.0, float64(overlap)/float64(len(seen)))
}

// ScoreFunding scores the company's funding stage. If a minimum stage is
// configured and the lead's stage scores below it, the dimension zeroes out.
func (m *Matcher) ScoreFunding(stage string) float64 {
	if stage == "" {
		return missingStageScore
	}
	score, ok := fundingScores[normalizeStage(stage)]
	if !ok {
		score = unknownStageScore
	}
	if m.cfg.MinFundingStage != "" {
		if minScore, ok := fundingScores[normalizeStage(m.cfg.MinFundingStage)]; ok && score < minScore {
			return 0.0
		}
	}
	return score
}

// ScoreAuthority resolves the contact's authority label and score, inferring
// seniority from the title when no explicit level is present.
func (m *Matcher) ScoreAuthority(title string, seniority lead.Seniority) (string, float64) {
	level := seniority
	if level == "" || level == lead.SeniorityUnknown {
		if title != "" {
			level = lead.DetectSeniority(title)
		} else {
			level = lead.SeniorityUnknown
		}
	}
	score, ok := authorityScores[level]
	if !ok {
		score = authorityScores[lead.SeniorityUnknown]
	}
	if decisionMakerLevels[level] {
		return AuthorityDecisionMaker, score
	}
	return AuthorityInfluencer, score
}

func normalizeStage(stage string) string {
	s := strings.ToLower(strings.TrimSpace(stage))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, " ", "_")
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
