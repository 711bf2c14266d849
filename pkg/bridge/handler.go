package bridge

import "github.com/justyntemme/webplug/pkg/protocol"

// SendFunc queues an application payload for the GUI. The payload is converted
// to a structured value when the outbound queue is drained, so an
// unrepresentable payload is logged and dropped there rather than failing here.
// It returns channel.ErrClosed once the bridge has been torn down.
type SendFunc func(payload any) error

// Handler receives custom messages from the GUI. It runs synchronously on the
// goroutine that calls Tick and may reply any number of times through send.
type Handler func(payload protocol.Value, send SendFunc)

// SetHandler installs or replaces the custom message handler. The new handler
// receives every message processed after the call; nil removes it.
func (b *Bridge) SetHandler(h Handler) {
	if h == nil {
		b.handler.Store(nil)
		return
	}
	b.handler.Store(&h)
}

func (b *Bridge) currentHandler() Handler {
	if h := b.handler.Load(); h != nil {
		return *h
	}
	return nil
}
