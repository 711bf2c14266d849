package bridge

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the instrumentation scope used when the bridge creates its meter.
const MeterName = "github.com/justyntemme/webplug/pkg/bridge"

// Reasons attached to the dropped counter.
const (
	DropDecode       = "decode"
	DropUnknownParam = "unknown_parameter"
	DropNoHandler    = "no_handler"
	DropEncode       = "encode"
	DropTransport    = "transport"
	DropInboundFull  = "inbound_full"
)

// Metrics holds the bridge's instruments.
type Metrics struct {
	Inbound      metric.Int64Counter
	Outbound     metric.Int64Counter
	Dropped      metric.Int64Counter
	TickDuration metric.Float64Histogram
}

// NewMetrics creates all instruments from the given meter. A nil meter yields
// no-op instruments.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(MeterName)
	}

	m := &Metrics{}
	var err error

	m.Inbound, err = meter.Int64Counter("webplug.bridge.inbound",
		metric.WithDescription("Messages taken from the GUI queue"),
	)
	if err != nil {
		return nil, err
	}

	m.Outbound, err = meter.Int64Counter("webplug.bridge.outbound",
		metric.WithDescription("Messages handed to the GUI transport"),
	)
	if err != nil {
		return nil, err
	}

	m.Dropped, err = meter.Int64Counter("webplug.bridge.dropped",
		metric.WithDescription("Messages dropped, by reason"),
	)
	if err != nil {
		return nil, err
	}

	m.TickDuration, err = meter.Float64Histogram("webplug.bridge.tick.duration",
		metric.WithDescription("Duration of one bridge tick in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) drop(reason string) {
	m.Dropped.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reason", reason)))
}
