package repository

import (
	"context"
	"sync"

	"github.com/okian/scout/internal/domain/signal"
	"github.com/okian/scout/pkg/metrics"
)

// InMemorySignalStore is the append-only signal log. Events are indexed
// by subject and by company at write time; reads return copies so a
// concurrent scoring pass never observes a slice being appended to.
type InMemorySignalStore struct {
	mu        sync.RWMutex
	total     int
	bySubject map[string][]signal.Event
	byCompany map[string][]signal.Event
}

// NewInMemorySignalStore constructs an empty signal store.
func NewInMemorySignalStore() *InMemorySignalStore {
	return &InMemorySignalStore{
		bySubject: make(map[string][]signal.Event),
		byCompany: make(map[string][]signal.Event),
	}
}

// Append adds an event to the log and its indexes.
func (s *InMemorySignalStore) Append(_ context.Context, ev signal.Event) error {
	s.mu.Lock()
	s.total++
	s.bySubject[ev.SubjectID] = append(s.bySubject[ev.SubjectID], ev)
	if ev.CompanyID != "" {
		s.byCompany[ev.CompanyID] = append(s.byCompany[ev.CompanyID], ev)
	}
	size := s.total
	s.mu.Unlock()

	metrics.UpdateSignalStoreSize(size)
	return nil
}

// BySubject returns all events observed for a subject, oldest first.
func (s *InMemorySignalStore) BySubject(_ context.Context, subjectID string) []signal.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyEvents(s.bySubject[subjectID])
}

// ByCompany returns all events observed at a company, oldest first.
func (s *InMemorySignalStore) ByCompany(_ context.Context, companyID string) []signal.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyEvents(s.byCompany[companyID])
}

// Count returns the total number of stored events.
func (s *InMemorySignalStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

func copyEvents(events []signal.Event) []signal.Event {
	if len(events) == 0 {
		return nil
	}
	out := make([]signal.Event, len(events))
	copy(out, events)
	return out
}
