package flowdi

import (
	"sync"
	"sync/atomic"
)

// resolution is one link of an immutable resolution chain. Each factory
// invocation receives its own node as Locator, so nested Resolve calls know
// which keys are still under construction.
//
// A node is marked done when its factory returns. A Locator kept past that
// point no longer describes a live chain, so cycle walks stop at done nodes
// and fall back to the in-flight build table.
type resolution struct {
	c      *Container
	parent *resolution
	key    string
	done   atomic.Bool

	mu   sync.Mutex
	deps []string
}

var _ Locator = (*resolution)(nil)

// Resolve resolves key with this node as parent.
func (r *resolution) Resolve(key string, opts ...ResolveOption) (any, error) {
	return r.c.resolve(r, key, newResolveOptions(opts))
}

// Has reports whether key is registered.
func (r *resolution) Has(key string) bool {
	return r.c.Has(key)
}

// Keys returns every registered key in registration order.
func (r *resolution) Keys() []string {
	return r.c.Keys()
}

// depend records that the factory behind r resolved key.
func (r *resolution) depend(key string) {
	if r.done.Load() {
		return
	}
	r.mu.Lock()
	r.deps = append(r.deps, key)
	r.mu.Unlock()
}

func (r *resolution) dependencies() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deps
}

// cycle returns the active keys from the first occurrence of key down to r,
// outermost first, or nil when key is not being constructed on this chain.
func (r *resolution) cycle(key string) []string {
	var active []string
	found := false
	for n := r; n != nil && !n.done.Load(); n = n.parent {
		active = append(active, n.key)
		if n.key == key {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	for i, j := 0, len(active)-1; i < j; i, j = i+1, j-1 {
		active[i], active[j] = active[j], active[i]
	}
	return active
}
