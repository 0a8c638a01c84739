// Package signal contains the immutable buying-signal event model and the
// time-decay function applied to it during scoring.
package signal

import (
	"fmt"
	"math"
	"time"
)

// Default decay half-lives. Intent scoring uses the shorter window so that
// behavioral signals cool off quickly; the pipeline-level default matches a
// weekly cadence.
const (
	DefaultIntentHalfLife   = 72 * time.Hour
	DefaultPipelineHalfLife = 168 * time.Hour
)

// Type identifies the kind of buying signal.
type Type string

// Signal kinds. The set is closed; unknown kinds flowing in from upstream
// collectors are still scoreable via the default-weight path.
const (
	TypeContentEngagement    Type = "content_engagement"
	TypeProfileVisit         Type = "profile_visit"
	TypeTopicInteraction     Type = "topic_interaction"
	TypeCompetitorEngagement Type = "competitor_engagement"
	TypeFundingRound         Type = "funding_round"
	TypeRoleChange           Type = "role_change"
	TypeEventAttendance      Type = "event_attendance"
	TypeGroupJoin            Type = "group_join"
	TypeDemoRequest          Type = "demo_request"
	TypePricingPageVisit     Type = "pricing_page_visit"
)

// Source identifies where a signal originated.
type Source string

// Signal origins.
const (
	SourceLinkedIn       Source = "linkedin"
	SourceCrunchbase     Source = "crunchbase"
	SourceCompanyWebsite Source = "company_website"
	SourceEventPlatform  Source = "event_platform"
	SourceSlack          Source = "slack"
	SourceManual         Source = "manual"
)

// Payload carries the type-specific fields of a signal. Action returns the
// string the intent scorer's action-modifier table matches against ("like",
// "share", "series_a", ...); payloads with no meaningful action return "".
type Payload interface {
	Action() string
}

// EngagementPayload describes a content interaction (like, comment, share).
type EngagementPayload struct {
	EventType string // "like" | "comment" | "share"
	PostID    string
	UserName  string
}

func (p EngagementPayload) Action() string { return p.EventType }

// VisitPayload describes a profile or pricing-page visit.
type VisitPayload struct {
	URL        string
	VisitCount int
}

func (p VisitPayload) Action() string { return "visit" }

// FundingPayload describes a funding-round announcement.
type FundingPayload struct {
	Amount    float64
	RoundType string // normalized, e.g. "series_a"
	Investors []string
	SourceURL string
}

func (p FundingPayload) Action() string { return p.RoundType }

// RoleChangePayload describes a job change.
type RoleChangePayload struct {
	NewTitle      string
	PreviousTitle string
}

func (p RoleChangePayload) Action() string { return "" }

// EventPayload describes attendance at an industry event.
type EventPayload struct {
	EventName string
	Role      string // "attendee" | "speaker" | ...
}

func (p EventPayload) Action() string { return "" }

// GenericPayload is the forward-compatibility bag for signal kinds that do
// not yet have a dedicated payload shape.
type GenericPayload map[string]any

func (p GenericPayload) Action() string {
	for _, key := range []string{"event_type", "round_type", "action"} {
		if v, ok := p[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// Event is a single observed buying signal. Events are immutable after
// construction; consumers treat them as read-only values.
type Event struct {
	ID        string
	Type      Type
	SubjectID string
	Timestamp time.Time
	Source    Source
	Payload   Payload
	CompanyID string
	Strength  float64
}

// New validates and builds an Event. Strength must lie in [0,1] and the
// subject id must be non-empty; violations return ErrInvalidSignal-rooted
// errors.
func New(typ Type, subjectID string, ts time.Time, src Source, payload Payload, opts ...Option) (Event, error) {
	e := Event{
		Type:      typ,
		SubjectID: subjectID,
		Timestamp: ts,
		Source:    src,
		Payload:   payload,
		Strength:  defaultStrength,
	}
	for _, opt := range opts {
		opt(&e)
	}
	if e.SubjectID == "" {
		return Event{}, fmt.Errorf("new signal: %w: subject id is empty", ErrInvalidSignal)
	}
	if e.Strength < 0.0 || e.Strength > 1.0 {
		return Event{}, fmt.Errorf("new signal: %w: strength %v outside [0,1]", ErrInvalidSignal, e.Strength)
	}
	return e, nil
}

const defaultStrength = 0.5

// Option applies an optional field to an Event under construction.
type Option func(*Event)

// WithID sets an explicit event id. Events without one are deduplicated by
// the ingest path using a generated id.
func WithID(id string) Option {
	return func(e *Event) { e.ID = id }
}

// WithCompany associates the event with a company.
func WithCompany(companyID string) Option {
	return func(e *Event) { e.CompanyID = companyID }
}

// WithStrength overrides the default 0.5 strength.
func WithStrength(s float64) Option {
	return func(e *Event) { e.Strength = s }
}

// AgeHours returns the event age in hours relative to now. Future timestamps
// report zero age so they never amplify a score.
func (e Event) AgeHours(now time.Time) float64 {
	age := now.Sub(e.Timestamp).Hours()
	if age < 0 {
		return 0
	}
	return age
}

// DecayWeight is shorthand for Decay over this event's timestamp.
func (e Event) DecayWeight(halfLife time.Duration, now time.Time) float64 {
	return Decay(e.Timestamp, halfLife, now)
}

// Decay computes the half-life attenuation factor for a signal observed at
// ts: 0.5^(age/halfLife). It is 1.0 at age zero, 0.5 after one half-life,
// and clamps future timestamps to age zero.
func Decay(ts time.Time, halfLife time.Duration, now time.Time) float64 {
	if halfLife <= 0 {
		halfLife = DefaultIntentHalfLife
	}
	age := now.Sub(ts).Hours()
	if age < 0 {
		age = 0
	}
	return math.Pow(0.5, age/halfLife.Hours())
}
