// Package ocr runs an external OCR engine over scanned documents. The engine
// is an exec'd command so deployments can swap tesseract for anything with a
// compatible CLI, and invocations are rate limited because OCR is the most
// expensive stage in the pipeline by an order of magnitude.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/avidor/statex/internal/config"
	"github.com/avidor/statex/pkg/formatting"
)

// Engine recognizes text in a scanned document.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, data []byte) (string, error)
}

// Client shells out to a configured OCR command. The command receives the
// input path and is expected to write recognized text to stdout, either raw
// or as a fenced JSON sidecar with a "text" field.
type Client struct {
	command   string
	languages string
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger
}

type sidecar struct {
	Text string `json:"text"`
}

// NewClient builds a Client from pipeline configuration. Returns nil when no
// OCR command is configured; callers treat a nil client as OCR disabled.
func NewClient(cfg *config.PipelineConfig, logger *slog.Logger) *Client {
	if !cfg.OCREnabled() {
		return nil
	}

	// burst of 2 lets a reprocess fire right behind a fresh upload without
	// queueing on the rate limiter
	return &Client{
		command:   cfg.OCRCommand,
		languages: cfg.OCRLanguages,
		timeout:   cfg.OCRTimeoutDuration(),
		limiter:   rate.NewLimiter(rate.Limit(cfg.OCRRate), 2),
		logger:    logger.With("system", "ocr"),
	}
}

func (c *Client) Name() string { return "ocr" }

// Recognize writes the document to a scratch file, waits for a rate token,
// and runs the engine under the configured timeout.
func (c *Client) Recognize(ctx context.Context, data []byte) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp("", "statex-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, data, 0o600); err != nil {
		return "", fmt.Errorf("write scratch file: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.command, input, "stdout", "-l", c.languages)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if runCtx.Err() != nil {
			return "", fmt.Errorf("%w: %s after %s", ErrTimeout, c.command, c.timeout)
		}
		return "", fmt.Errorf("%w: %s: %v: %s", ErrEngineFailed, c.command, err,
			strings.TrimSpace(stderr.String()))
	}

	text := parseOutput(stdout.String())
	c.logger.Info("ocr complete", "bytes", len(data), "chars", len(text), "duration", time.Since(start))

	return text, nil
}

// parseOutput accepts either raw recognized text or a JSON sidecar. Engines
// wrapped in scripts often emit structured output in a fenced block.
func parseOutput(out string) string {
	if s, err := formatting.Parse[sidecar](out); err == nil && s.Text != "" {
		return s.Text
	}
	return strings.TrimSpace(out)
}
