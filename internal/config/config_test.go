package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a3tai/mcp-pdf-merger/internal/pdf"
)

func validTestConfig(t *testing.T) *Config {
	t.Helper()

	cfg := DefaultConfig()
	cfg.PDFDirectory = t.TempDir()
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != ModeStdio {
		t.Errorf("Expected default mode %q, got %q", ModeStdio, cfg.Mode)
	}
	if cfg.DefaultSelection != DefaultSelection {
		t.Errorf("Expected default selection %q, got %q", DefaultSelection, cfg.DefaultSelection)
	}
	if cfg.SortOrder != pdf.SortNone {
		t.Errorf("Expected default sort order %q, got %q", pdf.SortNone, cfg.SortOrder)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("Expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("Expected default max file size %d, got %d", DefaultMaxFileSize, cfg.MaxFileSize)
	}
	if cfg.PDFDirectory == "" {
		t.Error("Expected a default PDF directory")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError string
	}{
		{
			name:   "valid stdio config",
			mutate: func(c *Config) {},
		},
		{
			name: "valid cli config",
			mutate: func(c *Config) {
				c.Mode = ModeCLI
				c.OutputPath = "out.pdf"
			},
		},
		{
			name: "cli dry-run without output",
			mutate: func(c *Config) {
				c.Mode = ModeCLI
				c.DryRun = true
			},
		},
		{
			name:      "invalid mode",
			mutate:    func(c *Config) { c.Mode = "daemon" },
			wantError: "mode",
		},
		{
			name:      "empty directory",
			mutate:    func(c *Config) { c.PDFDirectory = "" },
			wantError: "directory",
		},
		{
			name:      "cli without output",
			mutate:    func(c *Config) { c.Mode = ModeCLI },
			wantError: "output path",
		},
		{
			name:      "invalid sort order",
			mutate:    func(c *Config) { c.SortOrder = "size" },
			wantError: "sort order",
		},
		{
			name:      "zero max file size",
			mutate:    func(c *Config) { c.MaxFileSize = 0 },
			wantError: "file size",
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.LogLevel = "verbose" },
			wantError: "log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantError, err)
			}
		})
	}
}

func TestConfig_ValidateCreatesMissingDirectory(t *testing.T) {
	cfg := validTestConfig(t)
	cfg.PDFDirectory = filepath.Join(t.TempDir(), "pdfs")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	info, err := os.Stat(cfg.PDFDirectory)
	if err != nil {
		t.Fatalf("Expected directory to be created: %v", err)
	}
	if !info.IsDir() {
		t.Error("Expected a directory")
	}
}

func TestConfig_ModeHelpers(t *testing.T) {
	cfg := validTestConfig(t)

	if !cfg.IsStdioMode() || cfg.IsCLIMode() {
		t.Error("Default config should report stdio mode")
	}

	cfg.Mode = ModeCLI
	if !cfg.IsCLIMode() || cfg.IsStdioMode() {
		t.Error("CLI config should report cli mode")
	}
}

func TestConfig_IsDebug(t *testing.T) {
	cfg := validTestConfig(t)

	if cfg.IsDebug() {
		t.Error("Default log level should not be debug")
	}

	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("Expected debug to be reported")
	}
}

func TestConfig_String(t *testing.T) {
	cfg := validTestConfig(t)
	cfg.Mode = ModeCLI
	cfg.OutputPath = "merged.pdf"

	s := cfg.String()
	for _, want := range []string{ModeCLI, "merged.pdf", cfg.PDFDirectory} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected String() to contain %q, got: %s", want, s)
		}
	}
}
