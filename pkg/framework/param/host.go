package param

import "sync"

// EditHandler receives parameter edits made from the editor side. Every change
// is wrapped as BeginEdit, one or more PerformEdit calls, then EndEdit so the
// host can group the change for automation recording and undo.
type EditHandler interface {
	BeginEdit(id string)
	PerformEdit(id string, normalized float64)
	EndEdit(id string)
}

// Edit is one completed begin/perform/end gesture.
type Edit struct {
	ID     string
	Before float64
	After  float64
}

// ChangeFunc is notified after a parameter's normalized value changed.
type ChangeFunc func(id string, normalized float64)

// Host is an in-process EditHandler backed by a Registry. It applies performed
// edits to the parameters, records finished gestures as undoable edits and
// notifies change listeners.
type Host struct {
	registry   *Registry
	maxHistory int

	mu        sync.Mutex
	gestures  map[string]float64 // value at BeginEdit
	history   []Edit
	listeners []ChangeFunc
}

// NewHost creates a host keeping at most maxHistory undoable edits. Zero keeps
// an unlimited history.
func NewHost(registry *Registry, maxHistory int) *Host {
	return &Host{
		registry:   registry,
		maxHistory: maxHistory,
		gestures:   make(map[string]float64),
	}
}

// OnChange registers a listener for value changes
func (h *Host) OnChange(fn ChangeFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

// BeginEdit opens a gesture on a parameter. Unknown IDs are ignored.
func (h *Host) BeginEdit(id string) {
	p := h.registry.Get(id)
	if p == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, open := h.gestures[id]; !open {
		h.gestures[id] = p.GetValue()
	}
}

// PerformEdit sets a parameter's normalized value
func (h *Host) PerformEdit(id string, normalized float64) {
	p := h.registry.Get(id)
	if p == nil {
		return
	}
	p.SetValue(normalized)
	h.notify(id, p.GetValue())
}

// EndEdit closes the gesture and records it when the value changed
func (h *Host) EndEdit(id string) {
	p := h.registry.Get(id)
	if p == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	before, open := h.gestures[id]
	if !open {
		return
	}
	delete(h.gestures, id)

	after := p.GetValue()
	if after == before {
		return
	}
	h.history = append(h.history, Edit{ID: id, Before: before, After: after})
	if h.maxHistory > 0 && len(h.history) > h.maxHistory {
		h.history = h.history[len(h.history)-h.maxHistory:]
	}
}

// InGesture reports whether a gesture is open on the parameter
func (h *Host) InGesture(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, open := h.gestures[id]
	return open
}

// History returns the recorded edits, oldest first
func (h *Host) History() []Edit {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Edit(nil), h.history...)
}

// Undo reverts the most recent edit
func (h *Host) Undo() (Edit, bool) {
	h.mu.Lock()
	if len(h.history) == 0 {
		h.mu.Unlock()
		return Edit{}, false
	}
	last := h.history[len(h.history)-1]
	h.history = h.history[:len(h.history)-1]
	h.mu.Unlock()

	if p := h.registry.Get(last.ID); p != nil {
		p.SetValue(last.Before)
		h.notify(last.ID, p.GetValue())
	}
	return last, true
}

func (h *Host) notify(id string, normalized float64) {
	h.mu.Lock()
	listeners := append([]ChangeFunc(nil), h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(id, normalized)
	}
}
