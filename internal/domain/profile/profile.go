// Package profile defines the outreach sender's context and the embedding
// contract used by the semantic matcher and the attention weighter.
package profile

import (
	"strings"
	"sync"

	"github.com/okian/scout/internal/domain/lead"
	"github.com/okian/scout/internal/domain/signal"
)

// Sender is the identity of the outreach sender for one campaign/session.
// All fields are immutable after construction; only the embedding cache is
// written, exactly once.
type Sender struct {
	Name             string
	Description      string
	ValueProps       []string
	TargetIndustries []string
	TargetRoles      []string

	mu        sync.Mutex
	embedding []float64
}

// NewSender builds a sender profile.
func NewSender(name, description string, valueProps, targetIndustries, targetRoles []string) *Sender {
	return &Sender{
		Name:             name,
		Description:      description,
		ValueProps:       valueProps,
		TargetIndustries: targetIndustries,
		TargetRoles:      targetRoles,
	}
}

// Embedding returns the sender's context vector, materializing it through
// the embedder on first use. Safe for concurrent callers.
func (s *Sender) Embedding(e Embedder) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.embedding == nil {
		s.embedding = e.EmbedSender(s)
	}
	return s.embedding
}

// TargetsIndustry reports whether the given industry is on the sender's
// target list, case-insensitive.
func (s *Sender) TargetsIndustry(industry lead.Industry) bool {
	v := strings.ToLower(string(industry))
	for _, t := range s.TargetIndustries {
		if strings.ToLower(t) == v {
			return true
		}
	}
	return false
}

// Embedder produces fixed-dimension vectors for senders, leads, and
// signals. Implementations must be deterministic for a given input so that
// scoring is reproducible; a production system would back this with a real
// text encoder.
type Embedder interface {
	// Dim is the embedding dimensionality; every returned vector has
	// exactly this length.
	Dim() int

	// EmbedSender encodes the sender's description and value props.
	EmbedSender(s *Sender) []float64

	// EmbedLead encodes a lead relative to the sender's context.
	EmbedLead(s *Sender, l *lead.Lead) []float64

	// EmbedSignal encodes one signal relative to the sender's context.
	EmbedSignal(s *Sender, e signal.Event) []float64
}
