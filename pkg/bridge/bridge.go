// Package bridge connects a web GUI to the plugin's parameters and custom
// message handler.
//
// The GUI runtime pushes decoded values with Deliver and calls Tick once per
// frame. Each tick drains the inbound queue, applies parameter changes through
// the host's edit transactions, answers Init with a full parameter snapshot,
// hands custom messages to the Handler, then drains the outbound queue into the
// Transport. Malformed input and unknown parameters are logged and skipped; they
// never stop a tick.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/justyntemme/webplug/pkg/channel"
	"github.com/justyntemme/webplug/pkg/framework/debug"
	"github.com/justyntemme/webplug/pkg/protocol"
)

// DefaultInboundCapacity bounds the GUI to plugin queue when Config leaves it
// unset.
const DefaultInboundCapacity = 1024

// ProfileSection is the profiler section name of a tick.
const ProfileSection = "bridge.tick"

// Transport delivers encoded values to the GUI.
type Transport interface {
	Send(v protocol.Value) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(v protocol.Value) error

// Send calls f(v).
func (f TransportFunc) Send(v protocol.Value) error { return f(v) }

// Logger is the subset of debug.Logger the bridge writes to.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

// Config configures a Bridge. Parameters and Transport are required.
type Config struct {
	Parameters Parameters
	Transport  Transport
	Handler    Handler

	// InboundCapacity bounds the GUI to plugin queue. Zero selects
	// DefaultInboundCapacity.
	InboundCapacity int
	// OutboundHint pre-sizes the plugin to GUI queue.
	OutboundHint int

	Logger   Logger
	Meter    metric.Meter
	Profiler *debug.Profiler
}

// Bridge is the message bridge between one GUI and one plugin instance.
type Bridge struct {
	params    Parameters
	transport Transport
	handler   atomic.Pointer[Handler]
	queues    *channel.Pair[protocol.Value, protocol.PluginMessage]
	log       Logger
	metrics   *Metrics
	profiler  *debug.Profiler
	send      SendFunc
}

// New creates a bridge and its queues.
func New(cfg Config) (*Bridge, error) {
	if cfg.Parameters == nil {
		return nil, ErrNoParameters
	}
	if cfg.Transport == nil {
		return nil, ErrNoTransport
	}

	capacity := cfg.InboundCapacity
	if capacity <= 0 {
		capacity = DefaultInboundCapacity
	}

	metrics, err := NewMetrics(cfg.Meter)
	if err != nil {
		return nil, fmt.Errorf("bridge: create metrics: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = debug.Default().Child("bridge")
	}

	b := &Bridge{
		params:    cfg.Parameters,
		transport: cfg.Transport,
		queues:    channel.NewPair[protocol.Value, protocol.PluginMessage](capacity),
		log:       log,
		metrics:   metrics,
		profiler:  cfg.Profiler,
	}
	b.queues.ToGUI.Grow(cfg.OutboundHint)
	b.send = func(payload any) error {
		return b.enqueue(protocol.PluginCustom(payload))
	}
	b.SetHandler(cfg.Handler)
	return b, nil
}

// Deliver queues a value received from the GUI for the next tick. It never
// waits: a full queue rejects the value with channel.ErrFull, and a closed
// bridge returns channel.ErrClosed.
func (b *Bridge) Deliver(v protocol.Value) error {
	err := b.queues.ToPlugin.Send(v)
	if errors.Is(err, channel.ErrFull) {
		b.metrics.drop(DropInboundFull)
	}
	return err
}

// Tick runs one full pass: every queued inbound message is processed, then
// every queued outbound message is sent. It returns channel.ErrClosed when the
// bridge has been closed, including when the bridge's own outbound queue
// rejects a message mid-tick.
func (b *Bridge) Tick() error {
	if b.Closed() {
		return channel.ErrClosed
	}
	if b.profiler != nil {
		defer b.profiler.Start(ProfileSection)()
	}
	start := time.Now()
	defer func() {
		b.metrics.TickDuration.Record(context.Background(), time.Since(start).Seconds())
	}()

	if err := b.drainInbound(); err != nil {
		return err
	}
	b.drainOutbound()
	return nil
}

// ParamValueChanged queues a parameter change for the GUI. The host calls it
// when a value changed outside the GUI, such as automation or undo.
func (b *Bridge) ParamValueChanged(id string, normalized float64) error {
	return b.enqueue(protocol.PluginParamChange(id, clamp(normalized)))
}

// ParamValuesChanged queues the current value of every parameter, as after a
// preset or state load.
func (b *Bridge) ParamValuesChanged() error {
	return b.snapshot()
}

// Close tears down both queues. Queued messages are discarded.
func (b *Bridge) Close() {
	b.queues.Close()
}

// Closed reports whether Close has been called.
func (b *Bridge) Closed() bool {
	return b.queues.ToPlugin.Closed()
}

// Pending returns the number of queued inbound and outbound messages.
func (b *Bridge) Pending() (inbound, outbound int) {
	return b.queues.ToPlugin.Len(), b.queues.ToGUI.Len()
}

func (b *Bridge) drainInbound() error {
	ctx := context.Background()
	for {
		v, ok := b.queues.ToPlugin.TryRecv()
		if !ok {
			return nil
		}
		b.metrics.Inbound.Add(ctx, 1)

		msg, err := protocol.DecodeGui(v)
		if err != nil {
			b.log.Warn("dropping GUI message: %v", err)
			b.metrics.drop(DropDecode)
			continue
		}

		switch msg.Kind() {
		case protocol.KindInit:
			if err := b.snapshot(); err != nil {
				return err
			}

		case protocol.KindParamChange:
			pc, _ := msg.ParamChange()
			if err := b.params.Apply(pc.ID, clamp(pc.Value)); err != nil {
				b.log.Warn("ignoring parameter change: %v", err)
				b.metrics.drop(DropUnknownParam)
			}

		case protocol.KindMessage:
			payload, _ := msg.Payload()
			h := b.currentHandler()
			if h == nil {
				b.log.Debug("no handler for custom message, dropping")
				b.metrics.drop(DropNoHandler)
				continue
			}
			h(payload, b.send)
		}
	}
}

func (b *Bridge) drainOutbound() {
	ctx := context.Background()
	for {
		msg, ok := b.queues.ToGUI.TryRecv()
		if !ok {
			return
		}

		v, err := protocol.EncodePlugin(msg)
		if err != nil {
			b.log.Warn("dropping %s message for GUI: %v", msg.Kind(), err)
			b.metrics.drop(DropEncode)
			continue
		}
		if err := b.transport.Send(v); err != nil {
			b.log.Warn("GUI transport rejected %s message: %v", msg.Kind(), err)
			b.metrics.drop(DropTransport)
			continue
		}
		b.metrics.Outbound.Add(ctx, 1)
	}
}

func (b *Bridge) snapshot() error {
	for id, v := range b.params.List() {
		if err := b.enqueue(protocol.PluginParamChange(id, v)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bridge) enqueue(msg protocol.PluginMessage) error {
	if err := b.queues.ToGUI.Send(msg); err != nil {
		return fmt.Errorf("bridge: queue %s for GUI: %w", msg.Kind(), err)
	}
	return nil
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
