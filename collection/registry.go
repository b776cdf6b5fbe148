package collection

import (
	"sort"
	"sync"

	"github.com/speedytwenty/mongodb-aggregate/errors"
)

// Registry maps logical collection keys to providers. Definitions refer to
// collections by logical key only; the binding to a concrete provider
// happens here, at execution time.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register binds key to p, replacing any existing binding. Re-registration
// is allowed so tests can swap in doubles.
func (r *Registry) Register(key string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[key] = p
}

// Resolve returns the provider bound to key, or an UNRESOLVED_COLLECTION
// error when no provider is registered under it.
func (r *Registry) Resolve(key string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[key]
	if !ok {
		return nil, errors.UnresolvedCollection(key)
	}
	return p, nil
}

// Get returns the provider bound to key and whether it exists.
func (r *Registry) Get(key string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[key]
	return p, ok
}

// Keys returns all registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.providers))
	for key := range r.providers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
