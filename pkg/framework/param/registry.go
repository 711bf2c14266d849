package param

import (
	"fmt"
	"iter"
	"sync"
)

// Registry manages plugin parameters. Iteration order is registration order and
// stays stable for the lifetime of the registry.
type Registry struct {
	params map[string]*Parameter
	order  []string // Maintain order for indexed access
	mu     sync.RWMutex
}

// NewRegistry creates a new parameter registry
func NewRegistry() *Registry {
	return &Registry{
		params: make(map[string]*Parameter),
		order:  make([]string, 0),
	}
}

// Add registers new parameters. IDs must be non-empty and unique.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if p.ID == "" {
			return fmt.Errorf("parameter %q has an empty ID", p.Name)
		}
		if _, exists := r.params[p.ID]; exists {
			return fmt.Errorf("parameter ID %q already exists", p.ID)
		}
		r.params[p.ID] = p
		r.order = append(r.order, p.ID)
	}

	return nil
}

// Get retrieves a parameter by ID
func (r *Registry) Get(id string) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.params[id]
}

// Count returns the number of parameters
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// All returns all parameters in order
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Parameter, len(r.order))
	for i, id := range r.order {
		result[i] = r.params[id]
	}

	return result
}

// Params iterates over the parameters in order. The registry lock is not held
// while the caller's loop body runs.
func (r *Registry) Params() iter.Seq[*Parameter] {
	return func(yield func(*Parameter) bool) {
		for _, p := range r.All() {
			if !yield(p) {
				return
			}
		}
	}
}

// ResetAll restores every parameter to its default value
func (r *Registry) ResetAll() {
	for p := range r.Params() {
		p.Reset()
	}
}
