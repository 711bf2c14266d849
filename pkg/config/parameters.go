package config

import (
	"errors"
	"fmt"

	"github.com/justyntemme/webplug/pkg/framework/param"
)

// ParameterConfig declares one plugin parameter. Min, Max and Default are plain
// values in the parameter's own unit.
type ParameterConfig struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Min      float64  `yaml:"min"`
	Max      float64  `yaml:"max"`
	Default  float64  `yaml:"default"`
	Steps    int32    `yaml:"steps"`
	Unit     string   `yaml:"unit"`
	Format   string   `yaml:"format"`
	Options  []string `yaml:"options"`
	Hidden   bool     `yaml:"hidden"`
	ReadOnly bool     `yaml:"read_only"`
}

func (p ParameterConfig) validate() error {
	kind, err := param.ParseKind(p.Kind)
	if err != nil {
		return err
	}
	switch kind {
	case param.KindFloat, param.KindInt:
		if p.Min >= p.Max {
			return fmt.Errorf("min %v must be below max %v", p.Min, p.Max)
		}
		if p.Default < p.Min || p.Default > p.Max {
			return fmt.Errorf("default %v outside %v-%v", p.Default, p.Min, p.Max)
		}
	case param.KindEnum:
		if len(p.Options) < 2 {
			return errors.New("enum needs at least two options")
		}
		if p.Default < 0 || int(p.Default) >= len(p.Options) {
			return fmt.Errorf("default option %v out of range", p.Default)
		}
	}
	if p.Steps < 0 {
		return errors.New("steps must not be negative")
	}
	if p.Format != "" {
		if _, _, err := param.FormatterByName(p.Format); err != nil {
			return err
		}
	}
	return nil
}

// Build creates the parameter described by p.
func (p ParameterConfig) Build() (*param.Parameter, error) {
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("parameter %q: %w", p.ID, err)
	}
	kind, _ := param.ParseKind(p.Kind)

	name := p.Name
	if name == "" {
		name = p.ID
	}

	var b *param.Builder
	switch kind {
	case param.KindInt:
		b = param.Int(p.ID, name, int(p.Min), int(p.Max), int(p.Default))
	case param.KindBool:
		b = param.Bool(p.ID, name, p.Default != 0)
	case param.KindEnum:
		options := make([]param.ChoiceOption, len(p.Options))
		for i, o := range p.Options {
			options[i] = param.ChoiceOption{Value: float64(i), Name: o}
		}
		b = param.Choice(p.ID, name, options).Default(p.Default)
	default:
		b = param.Float(p.ID, name, p.Min, p.Max, p.Default)
		if p.Steps > 0 {
			b.Steps(p.Steps)
		}
	}

	if p.Unit != "" {
		b.Unit(p.Unit)
	}
	if p.Format != "" {
		format, parse, _ := param.FormatterByName(p.Format)
		b.Formatter(format, parse)
	}
	if p.Hidden {
		b.Hidden()
	}
	if p.ReadOnly {
		b.ReadOnly()
	}
	return b.Build(), nil
}

// BuildRegistry creates a registry holding every declared parameter in
// declaration order.
func (c Config) BuildRegistry() (*param.Registry, error) {
	reg := param.NewRegistry()
	for _, pc := range c.Parameters {
		p, err := pc.Build()
		if err != nil {
			return nil, err
		}
		if err := reg.Add(p); err != nil {
			return nil, fmt.Errorf("register parameter: %w", err)
		}
	}
	return reg, nil
}
