// Package semantic scores the vector-space fit between the sender's context
// and a lead.
package semantic

import (
	"math"

	"github.com/okian/scout/internal/domain/lead"
	"github.com/okian/scout/internal/domain/profile"
)

const cosineEpsilon = 1e-8

// Dot returns the dot product of two vectors. Mismatched lengths compare
// over the shorter prefix.
func Dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm returns the Euclidean norm of a vector.
func Norm(a []float64) float64 {
	var sum float64
	for _, v := range a {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of two vectors in [-1, 1]. Zero
// vectors are handled with an epsilon denominator.
func Cosine(a, b []float64) float64 {
	return Dot(a, b) / (Norm(a)*Norm(b) + cosineEpsilon)
}

// Matcher computes the semantic fit of leads against one sender profile.
type Matcher struct {
	sender   *profile.Sender
	embedder profile.Embedder
}

// NewMatcher binds a matcher to a sender and an embedder.
func NewMatcher(sender *profile.Sender, embedder profile.Embedder) *Matcher {
	return &Matcher{sender: sender, embedder: embedder}
}

// Fit returns the sender/lead alignment in [0, 1]. Cosine similarity is
// clipped at zero because negative fit carries no meaning for engagement.
func (m *Matcher) Fit(l *lead.Lead) float64 {
	senderVec := m.sender.Embedding(m.embedder)
	leadVec := m.embedder.EmbedLead(m.sender, l)
	return math.Max(0.0, Cosine(senderVec, leadVec))
}
