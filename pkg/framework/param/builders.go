package param

import (
	"fmt"
	"strings"
)

// ChoiceOption represents a single choice in a list parameter
type ChoiceOption struct {
	Value   float64
	Name    string
	Aliases []string
}

// Float creates a builder for a continuous parameter over [min, max]
func Float(id, name string, min, max, defaultVal float64) *Builder {
	return New(id, name).
		Range(min, max).
		Default(defaultVal)
}

// Int creates a builder for an integer parameter over [min, max]
func Int(id, name string, min, max, defaultVal int) *Builder {
	steps := int32(max - min)
	if steps < 1 {
		steps = 1
	}
	return New(id, name).
		Kind(KindInt).
		Range(float64(min), float64(max)).
		Steps(steps).
		Default(float64(defaultVal))
}

// Bool creates a builder for an on/off parameter
func Bool(id, name string, defaultVal bool) *Builder {
	b := New(id, name).Toggle().Formatter(OnOffFormatter, OnOffParser)
	if defaultVal {
		b.Default(1)
	}
	return b
}

// Choice creates a parameter builder for a multiple choice parameter
func Choice(id, name string, options []ChoiceOption) *Builder {
	// Create name list for formatter
	names := make([]string, len(options))
	for i, opt := range options {
		names[i] = opt.Name
	}

	// Create formatter
	formatter := func(value float64) string {
		for _, opt := range options {
			if opt.Value == value {
				return opt.Name
			}
		}
		// Fallback to index-based lookup for integer values
		index := int(value)
		if index >= 0 && index < len(names) {
			return names[index]
		}
		return "Unknown"
	}

	// Create parser
	parser := func(str string) (float64, error) {
		normalizedStr := strings.ToLower(strings.TrimSpace(str))

		// Check each option and its aliases
		for _, opt := range options {
			if strings.EqualFold(str, opt.Name) {
				return opt.Value, nil
			}
			for _, alias := range opt.Aliases {
				if strings.EqualFold(normalizedStr, strings.ToLower(alias)) {
					return opt.Value, nil
				}
			}
		}

		return 0, fmt.Errorf("unknown option: %s", str)
	}

	// Determine range and steps
	minVal := 0.0
	maxVal := 0.0
	defaultVal := 0.0
	if len(options) > 0 {
		minVal = options[0].Value
		maxVal = options[len(options)-1].Value
		defaultVal = options[0].Value
	}
	steps := int32(len(options) - 1)
	if steps < 1 {
		steps = 1
	}

	return New(id, name).
		Kind(KindEnum).
		Range(minVal, maxVal).
		Steps(steps).
		Default(defaultVal).
		Flags(CanAutomate|IsList).
		Formatter(formatter, parser)
}

// Common parameter helpers

// GainParameter creates a standard gain parameter (-inf to +12dB)
func GainParameter(id, name string) *Builder {
	return New(id, name).
		Range(-80, 12).
		Default(0).
		Unit("dB").
		Formatter(func(v float64) string {
			if v <= -80 {
				return "-∞ dB"
			}
			return fmt.Sprintf("%.1f dB", v)
		}, func(s string) (float64, error) {
			// Handle infinity symbol
			if strings.Contains(strings.ToLower(s), "inf") || strings.Contains(s, "∞") {
				return -80, nil
			}
			// Standard dB parsing
			return DecibelParser(s)
		})
}

// MixParameter creates a standard mix/blend parameter (0-100%)
func MixParameter(id, name string) *Builder {
	return New(id, name).
		Range(0, 100).
		Default(100).
		Unit("%").
		Formatter(PercentFormatter, PercentParser)
}

// FrequencyParameter creates a standard frequency parameter
func FrequencyParameter(id, name string, min, max, defaultVal float64) *Builder {
	return New(id, name).
		Range(min, max).
		Default(defaultVal).
		Unit("Hz").
		Formatter(FrequencyFormatter, FrequencyParser)
}

// TimeParameter creates a time parameter (ms or s depending on range)
func TimeParameter(id, name string, minMs, maxMs, defaultMs float64) *Builder {
	return New(id, name).
		Range(minMs, maxMs).
		Default(defaultMs).
		Unit("ms").
		Formatter(TimeFormatter, TimeParser)
}

// BypassParameter creates a bypass on/off switch
func BypassParameter(id, name string) *Builder {
	return Choice(id, name, []ChoiceOption{
		{Value: 0, Name: "Active"},
		{Value: 1, Name: "Bypassed"},
	}).Bypass()
}
