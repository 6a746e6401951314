package logger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"igcounts/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "valid config with info level",
			cfg:     &config.LoggingConfig{Level: "info", Format: "text"},
			wantErr: false,
		},
		{
			name:    "valid config with debug level",
			cfg:     &config.LoggingConfig{Level: "debug", Format: "text"},
			wantErr: false,
		},
		{
			name:    "json format",
			cfg:     &config.LoggingConfig{Level: "info", Format: "json"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			cfg:     &config.LoggingConfig{Level: "invalid", Format: "text"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "igcounts.log")
	logger, err := New(&config.LoggingConfig{Level: "info", Format: "text", File: path})
	if err != nil {
		t.Fatalf("New() with file output failed: %v", err)
	}
	logger.Info("written to file and console")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"fatal", zerolog.FatalLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"bogus", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
			if !tt.wantErr && level != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.level, level, tt.expected)
			}
		})
	}
}

func TestTestLoggerCapture(t *testing.T) {
	tl := NewTestLogger()

	tl.Info("plain message")
	tl.WithField("subject", "Alice").Warn("field message")
	tl.WithError(errors.New("boom")).Error("error message")
	tl.InfoWithFields("fields message", map[string]interface{}{"count": 3})

	msgs := tl.Messages()
	if len(msgs) != 4 {
		t.Fatalf("Expected 4 captured messages, got %d", len(msgs))
	}

	if !tl.HasMessage("plain message") {
		t.Error("Expected plain message to be captured")
	}
	if msgs[1].Fields["subject"] != "Alice" {
		t.Errorf("Expected subject field, got %v", msgs[1].Fields)
	}
	if msgs[2].Error == nil || msgs[2].Error.Error() != "boom" {
		t.Errorf("Expected captured error, got %v", msgs[2].Error)
	}
	if len(tl.MessagesAt("WARN")) != 1 {
		t.Errorf("Expected one WARN message, got %d", len(tl.MessagesAt("WARN")))
	}

	tl.Clear()
	if len(tl.Messages()) != 0 {
		t.Error("Expected Clear to drop messages")
	}
}

func TestDerivedLoggersShareSink(t *testing.T) {
	tl := NewTestLogger()
	derived := tl.WithFields(map[string]interface{}{"provider": "duckduckgo"})
	derived.Info("from derived")

	if !tl.HasMessage("from derived") {
		t.Error("Expected derived logger to write to the parent sink")
	}
	if tl.Messages()[0].Fields["provider"] != "duckduckgo" {
		t.Error("Expected derived fields to be captured")
	}
}
