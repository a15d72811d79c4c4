package config

import (
	"testing"
	"time"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Name = "statex"
	cfg.Database.User = "statex"

	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	if cfg.ShutdownTimeout != "30s" {
		t.Errorf("ShutdownTimeout = %q, want 30s", cfg.ShutdownTimeout)
	}
	if cfg.MaxFileSizeBytes() != 50*1024*1024 {
		t.Errorf("MaxFileSizeBytes() = %d, want 50MB", cfg.MaxFileSizeBytes())
	}
	if cfg.Pipeline.SumTolerance != 0.05 {
		t.Errorf("SumTolerance = %v, want 0.05", cfg.Pipeline.SumTolerance)
	}
	if cfg.Pipeline.AllocationTolerance != 1.0 {
		t.Errorf("AllocationTolerance = %v, want 1.0", cfg.Pipeline.AllocationTolerance)
	}
	if cfg.Pipeline.ReconcileTolerance != 0.005 {
		t.Errorf("ReconcileTolerance = %v, want 0.005", cfg.Pipeline.ReconcileTolerance)
	}
	if cfg.Pipeline.ToolTimeoutDuration() != 30*time.Second {
		t.Errorf("ToolTimeout = %v, want 30s", cfg.Pipeline.ToolTimeoutDuration())
	}
	if cfg.Pipeline.OCREnabled() {
		t.Error("OCR should be disabled without an ocr_command")
	}
	if cfg.Pagination.DefaultPageSize != 20 {
		t.Errorf("DefaultPageSize = %d, want 20", cfg.Pagination.DefaultPageSize)
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad shutdown timeout", func(c *Config) { c.ShutdownTimeout = "soon" }},
		{"bad max file size", func(c *Config) { c.MaxFileSize = "big" }},
		{"bad tool timeout", func(c *Config) { c.Pipeline.ToolTimeout = "whenever" }},
		{"sum tolerance too high", func(c *Config) { c.Pipeline.SumTolerance = 1.5 }},
		{"negative ocr rate", func(c *Config) { c.Pipeline.OCRRate = -1 }},
		{"missing db name", func(c *Config) { c.Database.Name = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Database.Name = "statex"
			cfg.Database.User = "statex"
			tt.mutate(cfg)

			if err := cfg.Finalize(); err == nil {
				t.Error("Finalize() should have failed")
			}
		})
	}
}

func TestMergeOverlay(t *testing.T) {
	base := &Config{Version: "0.1.0", ShutdownTimeout: "30s"}
	base.Pipeline.SumTolerance = 0.05

	overlay := &Config{Version: "0.2.0"}
	overlay.Pipeline.SumTolerance = 0.1
	overlay.Pipeline.OCRCommand = "tesseract"

	base.Merge(overlay)

	if base.Version != "0.2.0" {
		t.Errorf("Version = %q, want 0.2.0", base.Version)
	}
	if base.ShutdownTimeout != "30s" {
		t.Errorf("ShutdownTimeout = %q, want unchanged 30s", base.ShutdownTimeout)
	}
	if base.Pipeline.SumTolerance != 0.1 {
		t.Errorf("SumTolerance = %v, want 0.1", base.Pipeline.SumTolerance)
	}
	if base.Pipeline.OCRCommand != "tesseract" {
		t.Errorf("OCRCommand = %q, want tesseract", base.Pipeline.OCRCommand)
	}
}
