package channel

// Pair holds one queue per direction. ToPlugin carries values from the GUI and is
// bounded so a stalled or flooding GUI can never make the plugin side wait.
// ToGUI is unbounded; its only producer is the bridge itself.
type Pair[In, Out any] struct {
	ToPlugin *Queue[In]
	ToGUI    *Queue[Out]
}

// NewPair creates both queues. inboundCap bounds the GUI to plugin direction.
func NewPair[In, Out any](inboundCap int) *Pair[In, Out] {
	return &Pair[In, Out]{
		ToPlugin: NewQueue[In](inboundCap),
		ToGUI:    NewQueue[Out](0),
	}
}

// Close closes both directions.
func (p *Pair[In, Out]) Close() {
	p.ToPlugin.Close()
	p.ToGUI.Close()
}
