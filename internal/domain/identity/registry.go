package identity

import (
	"sync"
	"sync/atomic"
)

// Registry tracks which display names are in use so no two active
// competitors share one.
type Registry interface {
	// Claim atomically records name. It returns false when the name is
	// already taken.
	Claim(name string) bool

	// Release frees a name, typically when its owner retires.
	Release(name string)

	Size() int64
}

// inMemoryRegistry implements Registry with a mutex-guarded set.
type inMemoryRegistry struct {
	mu    sync.Mutex
	taken map[string]struct{}
	size  atomic.Int64
}

// NewRegistry creates an empty in-memory registry.
func NewRegistry() Registry {
	return &inMemoryRegistry{taken: make(map[string]struct{})}
}

func (r *inMemoryRegistry) Claim(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.taken[name]; exists {
		return false
	}
	r.taken[name] = struct{}{}
	r.size.Add(1)
	return true
}

func (r *inMemoryRegistry) Release(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.taken[name]; exists {
		delete(r.taken, name)
		r.size.Add(-1)
	}
}

// Size returns the number of names in use.
func (r *inMemoryRegistry) Size() int64 {
	return r.size.Load()
}
