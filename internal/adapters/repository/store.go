// Package repository defines the signal and decision store interfaces
// plus their in-memory implementations.
package repository

import (
	"context"
	"time"

	"github.com/okian/scout/internal/domain/signal"
)

// Record is the stored outcome of one pipeline run for a lead.
type Record struct {
	SubjectID     string
	CompanyID     string
	IntentScore   float64
	IntentLabel   string
	ICPScore      float64
	SemanticScore float64
	NeuralProb    float64
	ShouldEngage  bool
	Priority      string
	Reason        string
	DraftBody     string
	UpdatedAt     time.Time
}

// Entry is a ranked listing row derived from a Record.
type Entry struct {
	Rank   int
	Record Record
}

// DecisionStore keeps the latest pipeline result per lead, ranked by
// intent score for top-N listings.
type DecisionStore interface {
	// Put stores rec as the latest result for its subject, replacing any
	// previous one.
	Put(ctx context.Context, rec Record) error

	// Get returns the latest record and rank for a subject.
	// Returns ErrNotFound if the subject has never been scored.
	Get(ctx context.Context, subjectID string) (Entry, error)

	// TopN returns the top-N entries ordered by intent score desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of leads with a stored decision.
	Count(ctx context.Context) int
}

// SignalStore is the append-only event log indexed by subject and
// company. Writes happen only on ingestion; scoring passes read.
type SignalStore interface {
	// Append adds an event to the log and its indexes.
	Append(ctx context.Context, ev signal.Event) error

	// BySubject returns all events observed for a subject, oldest first.
	BySubject(ctx context.Context, subjectID string) []signal.Event

	// ByCompany returns all events observed at a company, oldest first.
	ByCompany(ctx context.Context, companyID string) []signal.Event

	// Count returns the total number of stored events.
	Count(ctx context.Context) int
}
