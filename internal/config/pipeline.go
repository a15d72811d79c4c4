package config

import (
	"fmt"
	"time"
)

// PipelineConfig holds the tunable parameters of the extraction pipeline.
// The tolerance defaults come from the reconciliation and validation
// contracts: 0.5% relative agreement between tools, 5% portfolio-sum
// deviation, 1 percentage point of allocation drift.
type PipelineConfig struct {
	SumTolerance        float64 `toml:"sum_tolerance"`
	AllocationTolerance float64 `toml:"allocation_tolerance"`
	ReconcileTolerance  float64 `toml:"reconcile_tolerance"`
	ToolTimeout         string  `toml:"tool_timeout"`
	OCRTimeout          string  `toml:"ocr_timeout"`
	OCRCommand          string  `toml:"ocr_command"`
	OCRLanguages        string  `toml:"ocr_languages"`
	OCRRate             float64 `toml:"ocr_rate"`
}

// ToolTimeoutDuration returns ToolTimeout as a time.Duration.
func (c *PipelineConfig) ToolTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ToolTimeout)
	return d
}

// OCRTimeoutDuration returns OCRTimeout as a time.Duration.
func (c *PipelineConfig) OCRTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.OCRTimeout)
	return d
}

// OCREnabled reports whether an external OCR engine is configured.
func (c *PipelineConfig) OCREnabled() bool {
	return c.OCRCommand != ""
}

// Finalize applies defaults and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.SumTolerance != 0 {
		c.SumTolerance = overlay.SumTolerance
	}
	if overlay.AllocationTolerance != 0 {
		c.AllocationTolerance = overlay.AllocationTolerance
	}
	if overlay.ReconcileTolerance != 0 {
		c.ReconcileTolerance = overlay.ReconcileTolerance
	}
	if overlay.ToolTimeout != "" {
		c.ToolTimeout = overlay.ToolTimeout
	}
	if overlay.OCRTimeout != "" {
		c.OCRTimeout = overlay.OCRTimeout
	}
	if overlay.OCRCommand != "" {
		c.OCRCommand = overlay.OCRCommand
	}
	if overlay.OCRLanguages != "" {
		c.OCRLanguages = overlay.OCRLanguages
	}
	if overlay.OCRRate != 0 {
		c.OCRRate = overlay.OCRRate
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.SumTolerance == 0 {
		c.SumTolerance = 0.05
	}
	if c.AllocationTolerance == 0 {
		c.AllocationTolerance = 1.0
	}
	if c.ReconcileTolerance == 0 {
		c.ReconcileTolerance = 0.005
	}
	if c.ToolTimeout == "" {
		c.ToolTimeout = "30s"
	}
	if c.OCRTimeout == "" {
		c.OCRTimeout = "120s"
	}
	if c.OCRLanguages == "" {
		c.OCRLanguages = "eng+heb"
	}
	if c.OCRRate == 0 {
		c.OCRRate = 1.0
	}
}

func (c *PipelineConfig) validate() error {
	if c.SumTolerance < 0 || c.SumTolerance >= 1 {
		return fmt.Errorf("sum_tolerance %v outside [0, 1)", c.SumTolerance)
	}
	if c.AllocationTolerance < 0 || c.AllocationTolerance >= 100 {
		return fmt.Errorf("allocation_tolerance %v outside [0, 100)", c.AllocationTolerance)
	}
	if c.ReconcileTolerance < 0 || c.ReconcileTolerance >= 1 {
		return fmt.Errorf("reconcile_tolerance %v outside [0, 1)", c.ReconcileTolerance)
	}
	if _, err := time.ParseDuration(c.ToolTimeout); err != nil {
		return fmt.Errorf("invalid tool_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.OCRTimeout); err != nil {
		return fmt.Errorf("invalid ocr_timeout: %w", err)
	}
	if c.OCRRate < 0 {
		return fmt.Errorf("ocr_rate %v is negative", c.OCRRate)
	}
	return nil
}
