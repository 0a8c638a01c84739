// Package attention ranks a lead's signals by their relevance to the
// sender's context using single-layer cross-attention: the sender vector is
// the query and signal vectors are the keys.
package attention

import (
	"fmt"
	"math"

	"github.com/okian/scout/internal/domain/profile"
	"github.com/okian/scout/internal/domain/semantic"
	"github.com/okian/scout/internal/domain/signal"
)

// Weighter computes per-signal relevance for one sender profile.
type Weighter struct {
	sender   *profile.Sender
	embedder profile.Embedder
}

// NewWeighter binds a weighter to a sender and an embedder.
func NewWeighter(sender *profile.Sender, embedder profile.Embedder) *Weighter {
	return &Weighter{sender: sender, embedder: embedder}
}

// Weigh returns a relevance score per signal, keyed by Key. Softmax
// attention over the signal set is rescaled by len(signals), so the scores
// are relative lift rather than probabilities: a uniformly attended set
// averages 1.0 and a dominant signal exceeds 1.0. An empty signal list
// returns an empty map without touching the embedder.
func (w *Weighter) Weigh(signals []signal.Event) map[string]float64 {
	if len(signals) == 0 {
		return map[string]float64{}
	}

	query := w.sender.Embedding(w.embedder)
	scale := math.Sqrt(float64(w.embedder.Dim()))

	scores := make([]float64, len(signals))
	for i, ev := range signals {
		key := w.embedder.EmbedSignal(w.sender, ev)
		scores[i] = semantic.Dot(query, key) / scale
	}

	weights := softmax(scores)

	out := make(map[string]float64, len(signals))
	n := float64(len(signals))
	for i, ev := range signals {
		out[Key(ev, i)] = weights[i] * n
	}
	return out
}

// Key identifies one signal inside a relevance map: the event id when the
// ingest path assigned one, otherwise the type tagged with the position.
func Key(ev signal.Event, i int) string {
	if ev.ID != "" {
		return ev.ID
	}
	return fmt.Sprintf("%s[%d]", ev.Type, i)
}

// softmax normalizes scores into a probability distribution, shifting by
// the max score for numerical stability.
func softmax(scores []float64) []float64 {
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	exps := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		exps[i] = math.Exp(s - maxScore)
		sum += exps[i]
	}
	for i := range exps {
		exps[i] /= sum
	}
	return exps
}
