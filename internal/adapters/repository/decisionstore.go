package repository

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/okian/scout/pkg/metrics"
)

// Treap-based, in-memory DecisionStore implementation.
//
// Ordering: intent score DESC, then subjectID ASC (deterministic).
// The BST comparator treats "less" as "ranks earlier", so an in-order
// traversal yields the outreach queue from hottest lead to coldest.

// scoreScale controls fixed-point scaling from float64. Intent scores
// live in [0,100] with one decimal of precision, so six decimal places
// are more than enough headroom.
const scoreScale = 1_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	if math.IsNaN(x) {
		return 0
	}
	return scoreFP(math.Round(x * scoreScale))
}

// node is one treap entry keyed by (score, subjectID).
type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aScore, aID) ranks earlier than (bScore, bID).
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore // higher score ranks earlier
	}
	return aID < bID // tie-breaker by id asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// scoreToPriority ties heap priority to the score so hot leads stay
// near the root. The offset keeps negative fixed-point values ordered.
func scoreToPriority(score scoreFP) uint64 {
	const offset = uint64(1) << 63
	return uint64(score) + offset
}

func insert(n *node, id string, score scoreFP) *node {
	if n == nil {
		return &node{id: id, score: score, prio: scoreToPriority(score), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = deleteNode(n.left, id, score)
	} else {
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// collectTopN appends up to limit entries in rank order (highest intent
// first). In-order traversal already honors the tie-breaking comparator.
func collectTopN(n *node, limit int, records map[string]Record, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, records, out)
	if len(*out) < limit {
		if rec, exists := records[n.id]; exists {
			*out = append(*out, Entry{Record: rec})
		}
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, records, out)
	}
}

// collectAll appends every entry in rank order.
func collectAll(n *node, records map[string]Record, out *[]Entry) {
	if n == nil {
		return
	}
	collectAll(n.left, records, out)
	if rec, ok := records[n.id]; ok {
		*out = append(*out, Entry{Record: rec})
	}
	collectAll(n.right, records, out)
}

// assignRanksWithTies assigns consecutive ranks; leads with the same
// intent score share a rank.
func assignRanksWithTies(entries []Entry) {
	currentRank := 0
	for i := range entries {
		if i == 0 || entries[i].Record.IntentScore != entries[i-1].Record.IntentScore {
			currentRank++
		}
		entries[i].Rank = currentRank
	}
}

// TreapDecisionStore keeps the latest Record per lead in a treap keyed
// by intent score for O(log n) ranked access.
type TreapDecisionStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]Record

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewTreapDecisionStore constructs a decision store with configuration
// options. The background metrics updater runs until ctx is cancelled
// or Close is called.
func NewTreapDecisionStore(ctx context.Context, opts ...Option) *TreapDecisionStore {
	s := &TreapDecisionStore{
		metricsUpdateInterval: 5 * time.Second,
		byID:                  make(map[string]Record),
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Close gracefully shuts down the metrics updater goroutine.
func (s *TreapDecisionStore) Close() error {
	select {
	case <-s.stopChan:
		// already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// Put implements DecisionStore.Put with O(log n) expected time. The
// latest result always wins: rescoring a lead after its signals decayed
// may lower its position.
func (s *TreapDecisionStore) Put(_ context.Context, rec Record) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	ns := toFixedPoint(rec.IntentScore)

	s.mu.Lock()
	if old, ok := s.byID[rec.SubjectID]; ok {
		s.root = deleteNode(s.root, rec.SubjectID, toFixedPoint(old.IntentScore))
	}
	s.byID[rec.SubjectID] = rec
	s.root = insert(s.root, rec.SubjectID, ns)
	size := len(s.byID)
	s.mu.Unlock()

	metrics.RecordDecisionStorePut()
	metrics.UpdateDecisionStoreSize(size)
	return nil
}

// Get returns the latest record and rank for a subject.
func (s *TreapDecisionStore) Get(_ context.Context, subjectID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byID[subjectID]; !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}

	all := make([]Entry, 0, len(s.byID))
	collectAll(s.root, s.byID, &all)
	assignRanksWithTies(all)

	for _, entry := range all {
		if entry.Record.SubjectID == subjectID {
			return entry, nil
		}
	}
	return Entry{}, ErrNotFound
}

// TopN returns the top N entries ordered by intent score desc.
func (s *TreapDecisionStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, n)
	collectTopN(s.root, n, s.byID, &out)
	assignRanksWithTies(out)
	return out, nil
}

// Count returns the number of leads with a stored decision.
func (s *TreapDecisionStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// startMetricsUpdater publishes the store size gauge periodically.
func (s *TreapDecisionStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.mu.RLock()
				size := len(s.byID)
				s.mu.RUnlock()
				metrics.UpdateDecisionStoreSize(size)
			}
		}
	}()
}
