package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/justyntemme/webplug/pkg/framework/param"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "webplug.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate, got %v", err)
	}
	reg, err := cfg.BuildRegistry()
	if err != nil {
		t.Fatalf("BuildRegistry failed: %v", err)
	}
	if reg.Count() != 4 {
		t.Errorf("Expected 4 default parameters, got %d", reg.Count())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
editor:
  width: 1024
  encoding: msgpack
parameters:
  - id: cutoff
    name: Cutoff
    min: 20
    max: 20000
    default: 20000
    format: hz
  - id: voices
    kind: int
    min: 1
    max: 8
    default: 4
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Expected addr :9000, got %q", cfg.Server.Addr)
	}
	if cfg.Editor.Width != 1024 || cfg.Editor.Height != 600 {
		t.Errorf("Expected 1024x600, got %dx%d", cfg.Editor.Width, cfg.Editor.Height)
	}
	if cfg.Editor.Encoding != "msgpack" {
		t.Errorf("Expected msgpack encoding, got %q", cfg.Editor.Encoding)
	}
	if len(cfg.Parameters) != 2 {
		t.Fatalf("Expected file parameters to replace defaults, got %d", len(cfg.Parameters))
	}

	reg, err := cfg.BuildRegistry()
	if err != nil {
		t.Fatalf("BuildRegistry failed: %v", err)
	}
	voices := reg.Get("voices")
	if voices == nil {
		t.Fatal("Expected voices parameter")
	}
	if voices.Kind != param.KindInt || voices.StepCount != 7 {
		t.Errorf("Expected int with 7 steps, got %s with %d", voices.Kind, voices.StepCount)
	}
	if voices.Name != "voices" {
		t.Errorf("Expected name to default to id, got %q", voices.Name)
	}
	if got := reg.Get("cutoff").FormatValue(reg.Get("cutoff").GetValue()); got != "20.00 kHz" {
		t.Errorf("Expected formatted default 20.00 kHz, got %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Editor.TickRate != 60 {
		t.Errorf("Expected default tick rate 60, got %d", cfg.Editor.TickRate)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WEBPLUG_SERVER_ADDR", "0.0.0.0:1234")
	t.Setenv("WEBPLUG_EDITOR_TICK_RATE", "30")
	t.Setenv("WEBPLUG_EDITOR_DEVELOPER_MODE", "true")
	t.Setenv("WEBPLUG_EDITOR_DEV_URL", "http://localhost:5173")
	t.Setenv("WEBPLUG_BRIDGE_INBOUND_CAPACITY", "16")
	t.Setenv("WEBPLUG_LOG_LEVEL", "debug")
	t.Setenv("WEBPLUG_STATE_PATH", "/tmp/webplug.state")
	t.Setenv("WEBPLUG_PLUGIN_VENDOR", "Acme")

	path := writeConfig(t, "server:\n  addr: \":9000\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:1234" {
		t.Errorf("Expected env to win over file, got %q", cfg.Server.Addr)
	}
	if cfg.Editor.TickRate != 30 {
		t.Errorf("Expected tick rate 30, got %d", cfg.Editor.TickRate)
	}
	if !cfg.Editor.DeveloperMode || cfg.Editor.DevURL != "http://localhost:5173" {
		t.Errorf("Expected developer mode with dev url, got %+v", cfg.Editor)
	}
	if cfg.Bridge.InboundCapacity != 16 {
		t.Errorf("Expected inbound capacity 16, got %d", cfg.Bridge.InboundCapacity)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %q", cfg.Log.Level)
	}
	if cfg.State.Path != "/tmp/webplug.state" {
		t.Errorf("Expected state path override, got %q", cfg.State.Path)
	}
	if cfg.Plugin.Vendor != "Acme" || cfg.Plugin.ID != "com.webplug.demo" {
		t.Errorf("Expected vendor override on the default plugin, got %+v", cfg.Plugin)
	}
	// Untouched keys keep their defaults.
	if cfg.Editor.Width != 800 {
		t.Errorf("Expected default width, got %d", cfg.Editor.Width)
	}
}

func TestEnvOverrideParseError(t *testing.T) {
	t.Setenv("WEBPLUG_EDITOR_WIDTH", "wide")
	if _, err := Load(""); err == nil {
		t.Error("Expected error for non-numeric width")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"PluginID", func(c *Config) { c.Plugin.ID = "" }, "plugin id"},
		{"EmptyAddr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"TickRate", func(c *Config) { c.Editor.TickRate = 0 }, "tick_rate"},
		{"Encoding", func(c *Config) { c.Editor.Encoding = "xml" }, "encoding"},
		{"DevURL", func(c *Config) {
			c.Editor.DeveloperMode = true
			c.Editor.DevURL = "localhost"
		}, "dev_url"},
		{"LogLevel", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"DuplicateID", func(c *Config) {
			c.Parameters = append(c.Parameters, ParameterConfig{ID: "gain", Kind: "bool"})
		}, "duplicate id"},
		{"EmptyID", func(c *Config) {
			c.Parameters = append(c.Parameters, ParameterConfig{Kind: "bool"})
		}, "id is empty"},
		{"BadRange", func(c *Config) {
			c.Parameters = []ParameterConfig{{ID: "x", Min: 1, Max: 1}}
		}, "must be below"},
		{"DefaultOutsideRange", func(c *Config) {
			c.Parameters = []ParameterConfig{{ID: "x", Min: 0, Max: 1, Default: 2}}
		}, "outside"},
		{"EnumOptions", func(c *Config) {
			c.Parameters = []ParameterConfig{{ID: "x", Kind: "enum", Options: []string{"only"}}}
		}, "two options"},
		{"UnknownKind", func(c *Config) {
			c.Parameters = []ParameterConfig{{ID: "x", Kind: "complex"}}
		}, "unknown parameter kind"},
		{"UnknownFormat", func(c *Config) {
			c.Parameters = []ParameterConfig{{ID: "x", Max: 1, Format: "furlongs"}}
		}, "unknown formatter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Expected ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = ""
	cfg.Editor.Width = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "server.addr") || !strings.Contains(err.Error(), "editor size") {
		t.Errorf("Expected both problems reported, got %v", err)
	}
}

func TestBuildEnumAndBool(t *testing.T) {
	cfg := Config{Parameters: []ParameterConfig{
		{ID: "mode", Kind: "choice", Options: []string{"A", "B", "C"}, Default: 2},
		{ID: "on", Kind: "bool", Default: 1, Hidden: true},
	}}

	reg, err := cfg.BuildRegistry()
	if err != nil {
		t.Fatalf("BuildRegistry failed: %v", err)
	}

	mode := reg.Get("mode")
	if mode.GetValue() != 1 {
		t.Errorf("Expected last option selected, got %v", mode.GetValue())
	}
	if got := mode.FormatValue(mode.GetValue()); got != "C" {
		t.Errorf("Expected C, got %q", got)
	}
	on := reg.Get("on")
	if on.GetValue() != 1 || on.Flags&param.IsHidden == 0 {
		t.Errorf("Expected hidden bool set to on, got value %v flags %x", on.GetValue(), on.Flags)
	}
}
