package bridge

import (
	"fmt"
	"iter"

	"github.com/justyntemme/webplug/pkg/framework/param"
)

// Parameters is the parameter capability the bridge consumes.
//
// List enumerates id and current normalized value in a stable order. It must be
// restartable, and values are read when each pair is yielded. Apply sets a
// parameter's normalized value as one host edit transaction and returns
// ErrUnknownParameter for ids it does not know. Stepped kinds (Int, Bool, Enum)
// receive the value snapped to their nearest step, not the raw clamped value.
type Parameters interface {
	List() iter.Seq2[string, float64]
	Apply(id string, normalized float64) error
}

// RegistryParameters adapts a param.Registry and the host's edit handler to
// Parameters.
type RegistryParameters struct {
	registry *param.Registry
	handler  param.EditHandler
}

// NewRegistryParameters creates the adapter. With a nil handler edits are
// written straight into the registry without notifying a host.
func NewRegistryParameters(registry *param.Registry, handler param.EditHandler) *RegistryParameters {
	return &RegistryParameters{registry: registry, handler: handler}
}

// List yields every registered parameter in registration order.
func (r *RegistryParameters) List() iter.Seq2[string, float64] {
	return func(yield func(string, float64) bool) {
		for p := range r.registry.Params() {
			if !yield(p.ID, p.GetValue()) {
				return
			}
		}
	}
}

// Apply runs BeginEdit, PerformEdit, EndEdit for one parameter. The value is
// snapped to the parameter's range and steps before it reaches the host.
func (r *RegistryParameters) Apply(id string, normalized float64) error {
	p := r.registry.Get(id)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}

	v := p.Snap(normalized)
	if r.handler == nil {
		p.SetValue(v)
		return nil
	}

	r.handler.BeginEdit(id)
	r.handler.PerformEdit(id, v)
	r.handler.EndEdit(id)
	return nil
}
