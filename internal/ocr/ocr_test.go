package ocr

import (
	"io"
	"log/slog"
	"testing"

	"github.com/avidor/statex/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewClientDisabled(t *testing.T) {
	cfg := &config.PipelineConfig{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	if client := NewClient(cfg, testLogger()); client != nil {
		t.Error("NewClient() without a command should return nil")
	}
}

func TestNewClientConfigured(t *testing.T) {
	cfg := &config.PipelineConfig{OCRCommand: "tesseract"}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	client := NewClient(cfg, testLogger())
	if client == nil {
		t.Fatal("NewClient() returned nil for configured command")
	}
	if client.Name() != "ocr" {
		t.Errorf("Name() = %q", client.Name())
	}
	if client.languages != "eng+heb" {
		t.Errorf("languages = %q, want default eng+heb", client.languages)
	}
	if got := client.limiter.Burst(); got != 2 {
		t.Errorf("limiter burst = %d, want 2", got)
	}
}

func TestParseOutput(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want string
	}{
		{"raw text", "Portfolio Value 19'510'599 USD\n", "Portfolio Value 19'510'599 USD"},
		{"json sidecar", `{"text": "Holdings total"}`, "Holdings total"},
		{"fenced sidecar", "```json\n{\"text\": \"fenced\"}\n```", "fenced"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseOutput(tt.out); got != tt.want {
				t.Errorf("parseOutput(%q) = %q, want %q", tt.out, got, tt.want)
			}
		})
	}
}
