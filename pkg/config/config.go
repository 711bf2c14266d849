// Package config loads the webplug configuration: a YAML file overlaid by
// WEBPLUG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/justyntemme/webplug/pkg/framework/debug"
	"github.com/justyntemme/webplug/pkg/framework/plugin"
	"github.com/justyntemme/webplug/pkg/protocol"
)

// EnvPrefix prefixes every environment override, e.g. WEBPLUG_SERVER_ADDR.
const EnvPrefix = "WEBPLUG_"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the full webplug configuration.
type Config struct {
	Plugin     PluginConfig      `yaml:"plugin"`
	Server     ServerConfig      `yaml:"server"`
	Editor     EditorConfig      `yaml:"editor"`
	Bridge     BridgeConfig      `yaml:"bridge"`
	Log        LogConfig         `yaml:"log"`
	State      StateConfig       `yaml:"state"`
	Parameters []ParameterConfig `yaml:"parameters"`
}

// PluginConfig identifies the plugin the editor belongs to.
type PluginConfig struct {
	ID       string `yaml:"id" env:"ID"`
	Name     string `yaml:"name" env:"NAME"`
	Version  string `yaml:"version" env:"VERSION"`
	Vendor   string `yaml:"vendor" env:"VENDOR"`
	Category string `yaml:"category" env:"CATEGORY"`
}

// Info converts the section to plugin metadata.
func (p PluginConfig) Info() plugin.Info {
	return plugin.Info{ID: p.ID, Name: p.Name, Version: p.Version, Vendor: p.Vendor, Category: p.Category}
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

// EditorConfig describes the GUI window and how it is served.
type EditorConfig struct {
	Width         int    `yaml:"width" env:"WIDTH"`
	Height        int    `yaml:"height" env:"HEIGHT"`
	Background    string `yaml:"background" env:"BACKGROUND"`
	DeveloperMode bool   `yaml:"developer_mode" env:"DEVELOPER_MODE"`
	DevURL        string `yaml:"dev_url" env:"DEV_URL"`
	AssetsDir     string `yaml:"assets_dir" env:"ASSETS_DIR"`
	Encoding      string `yaml:"encoding" env:"ENCODING"`
	TickRate      int    `yaml:"tick_rate" env:"TICK_RATE"`
	ClientBuffer  int    `yaml:"client_buffer" env:"CLIENT_BUFFER"`
}

// BridgeConfig sizes the bridge queues.
type BridgeConfig struct {
	InboundCapacity int `yaml:"inbound_capacity" env:"INBOUND_CAPACITY"`
	OutboundHint    int `yaml:"outbound_hint" env:"OUTBOUND_HINT"`
}

// LogConfig selects log level and an optional log file.
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	File  string `yaml:"file" env:"FILE"`
}

// StateConfig points at the saved parameter state.
type StateConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// Default returns the built-in configuration: a local listener and a small
// demo parameter set.
func Default() Config {
	return Config{
		Plugin: PluginConfig{
			ID:       "com.webplug.demo",
			Name:     "webplug demo",
			Version:  "0.1.0",
			Vendor:   "webplug",
			Category: "Fx",
		},
		Server: ServerConfig{Addr: "127.0.0.1:7878"},
		Editor: EditorConfig{
			Width:        800,
			Height:       600,
			Background:   "#1e1e1e",
			Encoding:     "json",
			TickRate:     60,
			ClientBuffer: 256,
		},
		Bridge: BridgeConfig{
			InboundCapacity: 1024,
			OutboundHint:    64,
		},
		Log: LogConfig{Level: "info"},
		Parameters: []ParameterConfig{
			{ID: "gain", Name: "Gain", Kind: "float", Min: -60, Max: 12, Default: 0, Unit: "dB", Format: "db"},
			{ID: "mix", Name: "Mix", Kind: "float", Min: 0, Max: 100, Default: 100, Unit: "%", Format: "percent"},
			{ID: "mode", Name: "Mode", Kind: "enum", Options: []string{"Clean", "Warm", "Hot"}},
			{ID: "bypass", Name: "Bypass", Kind: "bool"},
		},
	}
}

// Load reads the YAML file at path on top of Default, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.UnmarshalYAMLBytes(data); err != nil {
			return cfg, err
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// UnmarshalYAMLBytes decodes a YAML document into c. Keys missing from the
// document keep their current values; a parameters list replaces the current
// one.
func (c *Config) UnmarshalYAMLBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv overlays WEBPLUG_<SECTION>_<KEY> variables. Parameters can only be
// declared in the file.
func ApplyEnv(c *Config) error {
	sections := []struct {
		prefix string
		target any
	}{
		{"PLUGIN_", &c.Plugin},
		{"SERVER_", &c.Server},
		{"EDITOR_", &c.Editor},
		{"BRIDGE_", &c.Bridge},
		{"LOG_", &c.Log},
		{"STATE_", &c.State},
	}
	for _, s := range sections {
		if err := env.ParseWithOptions(s.target, env.Options{Prefix: EnvPrefix + s.prefix}); err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
	}
	return nil
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if err := c.Plugin.Info().Validate(); err != nil {
		add("plugin: %v", err)
	}
	if c.Server.Addr == "" {
		add("server.addr is empty")
	}

	e := c.Editor
	if e.Width <= 0 || e.Height <= 0 {
		add("editor size %dx%d must be positive", e.Width, e.Height)
	}
	if e.TickRate <= 0 || e.TickRate > 1000 {
		add("editor.tick_rate %d out of range 1-1000", e.TickRate)
	}
	if e.ClientBuffer <= 0 {
		add("editor.client_buffer must be positive")
	}
	if _, err := protocol.FrameCodecByName(e.Encoding); err != nil {
		add("editor.encoding: %v", err)
	}
	if e.DeveloperMode && e.DevURL != "" {
		if u, err := url.Parse(e.DevURL); err != nil || u.Scheme == "" || u.Host == "" {
			add("editor.dev_url %q is not an absolute URL", e.DevURL)
		}
	}

	if c.Bridge.InboundCapacity < 0 {
		add("bridge.inbound_capacity must not be negative")
	}
	if _, err := debug.ParseLevel(c.Log.Level); err != nil {
		add("log.level: %v", err)
	}

	seen := make(map[string]bool, len(c.Parameters))
	for i, p := range c.Parameters {
		if p.ID == "" {
			add("parameters[%d]: id is empty", i)
			continue
		}
		if seen[p.ID] {
			add("parameters[%d]: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true
		if err := p.validate(); err != nil {
			add("parameter %q: %v", p.ID, err)
		}
	}

	return errors.Join(errs...)
}
