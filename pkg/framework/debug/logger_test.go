package debug

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	t.Run("BasicLogging", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "TEST", FlagLevel|FlagPrefix)
		
		logger.Info("Hello %s", "World")
		
		output := buf.String()
		if !strings.Contains(output, "[INFO]") {
			t.Error("Missing log level")
		}
		if !strings.Contains(output, "[TEST]") {
			t.Error("Missing prefix")
		}
		if !strings.Contains(output, "Hello World") {
			t.Error("Missing message")
		}
	})
	
	t.Run("LogLevels", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", FlagLevel)
		logger.SetLevel(LogLevelWarn)
		
		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")
		logger.Error("error message")
		
		output := buf.String()
		if strings.Contains(output, "debug message") {
			t.Error("Debug message should not be logged")
		}
		if strings.Contains(output, "info message") {
			t.Error("Info message should not be logged")
		}
		if !strings.Contains(output, "warn message") {
			t.Error("Warn message should be logged")
		}
		if !strings.Contains(output, "error message") {
			t.Error("Error message should be logged")
		}
	})
	
	t.Run("Disabled", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", DefaultFlags)
		logger.SetEnabled(false)
		
		logger.Info("should not appear")
		
		if buf.Len() > 0 {
			t.Error("Disabled logger should not write")
		}
	})
	
	t.Run("FileInfo", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", FlagShortFile|FlagLevel)
		
		logger.Info("test")
		
		output := buf.String()
		if !strings.Contains(output, ".go:") {
			t.Errorf("Missing file info in output: %s", output)
		}
	})
	
	t.Run("ChildSharesOutput", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "webplug", FlagLevel|FlagPrefix)
		child := logger.Child("bridge")
		
		child.Warn("dropped frame")
		
		output := buf.String()
		if !strings.Contains(output, "[webplug.bridge]") {
			t.Errorf("Expected nested prefix, got %q", output)
		}
		if !strings.Contains(output, "[WARN] ") {
			t.Errorf("Expected warn level, got %q", output)
		}
	})
	
	t.Run("WarnIf", func(t *testing.T) {
		var buf bytes.Buffer
		prev := Default().Level()
		SetOutput(&buf)
		SetLevel(LogLevelDebug)
		defer func() {
			SetOutput(os.Stderr)
			SetLevel(prev)
		}()
		
		WarnIf(nil, "should not appear")
		WarnIf(errors.New("boom"), "save %s", "state")
		
		output := buf.String()
		if strings.Contains(output, "should not appear") {
			t.Error("Nil error should not be logged")
		}
		if !strings.Contains(output, "save state: boom") {
			t.Errorf("Expected wrapped message, got %q", output)
		}
	})
	
	t.Run("FileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "webplug.log")
		logger, err := NewFileLogger(path, "file", PlainFlags)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Info("written")
		if err := logger.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		logger.Info("after close")
		
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if !strings.Contains(string(data), "written") {
			t.Error("Expected message in log file")
		}
		if strings.Contains(string(data), "after close") {
			t.Error("Closed logger should discard output")
		}
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"", LogLevelInfo},
		{"INFO", LogLevelInfo},
		{"warning", LogLevelWarn},
		{" error ", LogLevelError},
		{"off", LogLevelOff},
	}
	
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.expected)
		}
	}
	
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevelOff, "OFF"},
		{LogLevel(99), "UNKNOWN"},
	}
	
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
		}
	}
}

func BenchmarkLogger(b *testing.B) {
	logger := New(bytes.NewBuffer(nil), "BENCH", DefaultFlags)
	
	b.Run("Enabled", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			logger.Info("Benchmark message %d", i)
		}
	})
	
	b.Run("Disabled", func(b *testing.B) {
		logger.SetEnabled(false)
		for i := 0; i < b.N; i++ {
			logger.Info("Benchmark message %d", i)
		}
	})
	
	b.Run("BelowLevel", func(b *testing.B) {
		logger.SetEnabled(true)
		logger.SetLevel(LogLevelError)
		for i := 0; i < b.N; i++ {
			logger.Info("Benchmark message %d", i)
		}
	})
}