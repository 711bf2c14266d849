package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Kind is the fixed set of parameter types a plugin can declare. All kinds share
// the same normalized (0-1) value contract; the kind only decides how normalized
// values map to plain values.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindBool
	KindEnum
)

// String returns the kind name used in configuration and GUI bindings.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "float":
		return KindFloat, nil
	case "int":
		return KindInt, nil
	case "bool":
		return KindBool, nil
	case "enum", "choice":
		return KindEnum, nil
	}
	return KindFloat, fmt.Errorf("unknown parameter kind %q", s)
}

// Parameter represents a plugin parameter
type Parameter struct {
	ID           string
	Name         string
	ShortName    string
	Unit         string
	Kind         Kind
	Min          float64
	Max          float64
	DefaultValue float64 // normalized
	StepCount    int32   // number of intervals for stepped kinds, 0 for continuous
	Flags        uint32

	// Atomic value for lock-free access in audio thread
	value atomic.Uint64

	// Value formatting
	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// Flags for parameters
const (
	CanAutomate uint32 = 1 << 0
	IsReadOnly  uint32 = 1 << 1
	IsList      uint32 = 1 << 3
	IsHidden    uint32 = 1 << 4
	IsBypass    uint32 = 1 << 16
)

// GetValue returns the current normalized value (0-1)
func (p *Parameter) GetValue() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetValue sets the normalized value (0-1). Stepped kinds snap to the nearest step.
func (p *Parameter) SetValue(value float64) {
	p.value.Store(math.Float64bits(p.Snap(value)))
}

// Snap clamps a normalized value to 0-1 and, for stepped parameters, rounds it
// to the nearest step.
func (p *Parameter) Snap(value float64) float64 {
	if math.IsNaN(value) || value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}
	if p.StepCount > 0 {
		steps := float64(p.StepCount)
		value = math.Round(value*steps) / steps
	}
	return value
}

// Reset restores the default value
func (p *Parameter) Reset() {
	p.SetValue(p.DefaultValue)
}

// GetPlainValue converts normalized to plain value
func (p *Parameter) GetPlainValue() float64 {
	return p.Denormalize(p.GetValue())
}

// SetFormatter sets custom value formatting
func (p *Parameter) SetFormatter(format func(float64) string, parse func(string) (float64, error)) {
	p.formatFunc = format
	p.parseFunc = parse
}

// FormatValue returns formatted parameter value
func (p *Parameter) FormatValue(normalized float64) string {
	plain := p.Denormalize(p.Snap(normalized))

	if p.formatFunc != nil {
		return p.formatFunc(plain)
	}

	switch {
	case p.Kind == KindBool:
		return OnOffFormatter(plain)
	case p.StepCount > 0:
		return fmt.Sprintf("%.0f", plain)
	}
	return fmt.Sprintf("%.2f", plain)
}

// ParseValue parses string to normalized value
func (p *Parameter) ParseValue(str string) (float64, error) {
	parse := p.parseFunc
	if parse == nil {
		if p.Kind == KindBool {
			parse = OnOffParser
		} else {
			parse = func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
		}
	}
	plain, err := parse(str)
	if err != nil {
		return 0, err
	}
	return p.Normalize(plain), nil
}

// Normalize converts plain value to normalized (0-1)
func (p *Parameter) Normalize(plain float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	normalized := (plain - p.Min) / (p.Max - p.Min)
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}

// Denormalize converts normalized (0-1) to plain value
func (p *Parameter) Denormalize(normalized float64) float64 {
	return p.Min + normalized*(p.Max-p.Min)
}
