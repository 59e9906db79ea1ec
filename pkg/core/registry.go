package core

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Registry maps task names to factories. It is populated during process
// initialization and then frozen; after Freeze, lookups read the map without
// locking, which is safe because the map is never mutated again.
type Registry struct {
	mu        sync.Mutex
	frozen    atomic.Bool
	factories map[string]Factory
}

// NewRegistry creates an empty task registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a task factory under the given name. Registering after
// Freeze, or registering a duplicate name, is an error.
func (r *Registry) Register(name string, factory Factory) error {
	if r.frozen.Load() {
		return fmt.Errorf("registry: frozen, cannot register %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("registry: task %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Freeze marks the registry read-only.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

// Lookup returns the factory for a task name.
func (r *Registry) Lookup(name string) (Factory, error) {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("registry: unknown task %q", name)
	}
	return factory, nil
}

// List returns registered task names, sorted for stable output.
func (r *Registry) List() []string {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
