package profile

import (
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/okian/scout/internal/domain/lead"
	"github.com/okian/scout/internal/domain/signal"
)

// Default simulated-embedder parameters.
const (
	defaultDim       = 128
	defaultNoiseStd  = 0.1
	defaultBaseSeed  = 42
	normalizeEpsilon = 1e-9
)

// SimOption applies a configuration option to the SimEmbedder.
type SimOption func(*SimEmbedder)

// WithDim sets the embedding dimensionality.
func WithDim(dim int) SimOption {
	return func(e *SimEmbedder) {
		if dim > 0 {
			e.dim = dim
		}
	}
}

// WithSeed sets the base seed mixed into every derived vector.
func WithSeed(seed int64) SimOption {
	return func(e *SimEmbedder) { e.seed = seed }
}

// SimEmbedder is the deterministic stand-in for a real text encoder.
//
// Lead vectors are noise-perturbed copies of the sender vector when the
// lead's industry is on the sender's target list, and unrelated vectors
// otherwise, so that target-industry leads read as semantically close.
// Signal vectors are seeded by the signal timestamp; explicit high-intent
// kinds (demo requests, funding rounds) are pulled toward the sender vector
// so the attention weighter attends to them.
type SimEmbedder struct {
	dim  int
	seed int64
}

// NewSimEmbedder creates a simulated embedder.
func NewSimEmbedder(opts ...SimOption) *SimEmbedder {
	e := &SimEmbedder{dim: defaultDim, seed: defaultBaseSeed}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dim returns the embedding dimensionality.
func (e *SimEmbedder) Dim() int { return e.dim }

// EmbedSender derives a stable vector from the sender's name and
// description.
func (e *SimEmbedder) EmbedSender(s *Sender) []float64 {
	rng := rand.New(rand.NewSource(e.seed + hash64(s.Name+s.Description)))
	return e.uniform(rng)
}

// EmbedLead returns a vector near the sender's when the lead is in a target
// industry, and an unrelated vector otherwise.
func (e *SimEmbedder) EmbedLead(s *Sender, l *lead.Lead) []float64 {
	if l != nil && l.Company != nil && s.TargetsIndustry(l.Company.Industry) {
		sender := s.Embedding(e)
		rng := rand.New(rand.NewSource(e.seed + hash64(l.SubjectID)))
		vec := make([]float64, e.dim)
		for i := range vec {
			vec[i] = sender[i] + rng.NormFloat64()*defaultNoiseStd
		}
		return vec
	}
	rng := rand.New(rand.NewSource(e.seed + hash64("lead:"+leadKey(l))))
	return e.uniform(rng)
}

// EmbedSignal derives a unit vector from the signal timestamp, aligned with
// the sender for explicit high-intent signal kinds.
func (e *SimEmbedder) EmbedSignal(s *Sender, ev signal.Event) []float64 {
	rng := rand.New(rand.NewSource(e.seed + ev.Timestamp.Unix()))
	vec := e.uniform(rng)
	if ev.Type == signal.TypeDemoRequest || ev.Type == signal.TypeFundingRound {
		sender := s.Embedding(e)
		for i := range vec {
			vec[i] += sender[i]
		}
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm) + normalizeEpsilon
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

func (e *SimEmbedder) uniform(rng *rand.Rand) []float64 {
	vec := make([]float64, e.dim)
	for i := range vec {
		vec[i] = rng.Float64()
	}
	return vec
}

func leadKey(l *lead.Lead) string {
	if l == nil {
		return ""
	}
	return l.SubjectID
}

func hash64(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64() & math.MaxInt64)
}
