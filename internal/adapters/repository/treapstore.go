package repository

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/sportlife/internal/domain/model"
	"github.com/okian/sportlife/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: points DESC, then simulation ranking ASC. The simulation breaks
// ties by stable sort, so its ranking is the natural tie-breaker and an
// in-order traversal reproduces the standings exactly.

// Snapshot is an immutable view of the standings rebuilt after every Publish.
type Snapshot struct {
	RankByID map[string]int
	TopCache []Entry
	Taken    time.Time
}

type key struct {
	points  int
	ranking int
	id      string
}

// less reports whether a ranks before b.
func less(a, b key) bool {
	if a.points != b.points {
		return a.points > b.points
	}
	if a.ranking != b.ranking {
		return a.ranking < b.ranking
	}
	return a.id < b.id
}

type node struct {
	key   key
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

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, k key, prio uint64) *node {
	if n == nil {
		return &node{key: k, prio: prio, size: 1}
	}
	if less(k, n.key) {
		n.left = insert(n.left, k, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, k, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, k key) *node {
	if n == nil {
		return nil
	}
	switch {
	case k == n.key:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, k)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, k)
		}
	case less(k, n.key):
		n.left = deleteNode(n.left, k)
	default:
		n.right = deleteNode(n.right, k)
	}
	fix(n)
	return n
}

// position returns the 1-based in-order index of k.
func position(n *node, k key) int {
	pos := 0
	for n != nil {
		switch {
		case k == n.key:
			return pos + nsize(n.left) + 1
		case less(k, n.key):
			n = n.left
		default:
			pos += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// collectTopN appends up to limit entries in standings order.
func collectTopN(n *node, limit int, byID map[string]Entry, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, byID, out)
	if len(*out) < limit {
		if e, ok := byID[n.key.id]; ok {
			e.Rank = len(*out) + 1
			*out = append(*out, e)
		}
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, byID, out)
	}
}

// TreapStore is a concurrency-safe ordered index of the latest standings.
type TreapStore struct {
	mu           sync.RWMutex
	root         *node
	byID         map[string]Entry
	keys         map[string]key
	topCacheSize int

	snapshot atomic.Pointer[Snapshot]
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		topCacheSize: 32,
		byID:         make(map[string]Entry),
		keys:         make(map[string]key),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(&Snapshot{RankByID: map[string]int{}})
	return s
}

// Publish implements standings.Publisher.
func (s *TreapStore) Publish(ctx context.Context, ranked []*model.Competitor) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	present := make(map[string]struct{}, len(ranked))
	for _, c := range ranked {
		present[c.ID] = struct{}{}
		s.upsert(c)
	}
	for id, k := range s.keys {
		if _, ok := present[id]; !ok {
			s.root = deleteNode(s.root, k)
			delete(s.keys, id)
			delete(s.byID, id)
		}
	}
	count := len(s.byID)
	s.publishSnapshotLocked()
	s.mu.Unlock()

	metrics.RecordStandingsUpdate()
	metrics.UpdateStandingsRecords(count)
	return nil
}

func (s *TreapStore) upsert(c *model.Competitor) {
	if old, ok := s.keys[c.ID]; ok {
		s.root = deleteNode(s.root, old)
	}
	k := key{points: c.Points, ranking: c.Ranking, id: c.ID}
	s.keys[c.ID] = k
	s.byID[c.ID] = entryOf(c)
	s.root = insert(s.root, k, rand.Uint64())
}

// Rank returns the current entry for id in O(log n). Entry.Rank is the
// position in the index.
func (s *TreapStore) Rank(_ context.Context, id string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStandingsQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.keys[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	e := s.byID[id]
	e.Rank = position(s.root, k)
	return e, nil
}

// TopN returns the top N entries. Reads within the snapshot cache avoid the lock.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStandingsQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		return nil, ErrInvalidLimit
	}

	if snap := s.snapshot.Load(); n <= len(snap.TopCache) || len(snap.TopCache) == len(snap.RankByID) {
		out := make([]Entry, min(n, len(snap.TopCache)))
		copy(out, snap.TopCache)
		return out, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, s.byID, &out)
	return out, nil
}

// Count returns the number of indexed competitors.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Snapshot returns the latest immutable snapshot.
func (s *TreapStore) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// publishSnapshotLocked rebuilds the snapshot. The write lock must be held.
func (s *TreapStore) publishSnapshotLocked() {
	start := time.Now()

	top := make([]Entry, 0, s.topCacheSize)
	collectTopN(s.root, s.topCacheSize, s.byID, &top)

	rankByID := make(map[string]int, len(s.keys))
	for id, k := range s.keys {
		rankByID[id] = position(s.root, k)
	}

	s.snapshot.Store(&Snapshot{RankByID: rankByID, TopCache: top, Taken: start})
	metrics.RecordStandingsSnapshot(float64(time.Since(start).Milliseconds()))
}
