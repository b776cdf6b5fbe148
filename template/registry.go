package template

import (
	"fmt"
	"sort"
	"sync"

	"github.com/speedytwenty/mongodb-aggregate/errors"
)

// Registry holds named definitions. It is caller-owned: construct one,
// register definitions into it, and pass it where it is needed; there is
// no ambient process-wide registry.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds a definition under its own name. Registering a second
// definition with the same name fails.
func (r *Registry) Register(def *Definition) error {
	if def == nil {
		return errors.InvalidDefinition("cannot register a nil definition")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.defs[def.Name()]; dup {
		return errors.InvalidDefinition(fmt.Sprintf("definition %q already registered", def.Name())).
			WithDetail("name", def.Name())
	}
	r.defs[def.Name()] = def
	return nil
}

// Get returns a registered definition by name.
func (r *Registry) Get(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// MustGet returns a registered definition by name and panics when it is
// missing. Intended for startup wiring where absence is a programming
// error.
func (r *Registry) MustGet(name string) *Definition {
	def, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("template: definition %q not registered", name))
	}
	return def
}

// List returns the sorted names of all registered definitions.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}
