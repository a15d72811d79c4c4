package validate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/avidor/statex/internal/statement"
)

// Validator runs the consistency checks with configured tolerances.
// SumTolerance is a relative bound on the deviation between the summed
// security valuations and the stated portfolio value. AllocationTolerance is
// an absolute bound, in percentage points, on allocation totals drifting
// from 100.
type Validator struct {
	SumTolerance        decimal.Decimal
	AllocationTolerance decimal.Decimal
}

// New creates a Validator from float tolerances as carried in configuration.
func New(sumTolerance, allocationTolerance float64) *Validator {
	return &Validator{
		SumTolerance:        decimal.NewFromFloat(sumTolerance),
		AllocationTolerance: decimal.NewFromFloat(allocationTolerance),
	}
}

// Validate runs all checks against ext and returns the report. The document
// type decides whether missing holdings are an error or a warning.
func (v *Validator) Validate(ext *statement.Extraction, docType statement.DocumentType) *Report {
	r := &Report{Issues: make([]Issue, 0)}

	v.checkCompleteness(r, ext, docType)
	v.checkSumConsistency(r, ext)
	v.checkAllocationTotal(r, ext)
	v.checkCrossReference(r, ext)
	v.checkISINs(r, ext)
	v.checkDuplicates(r, ext)

	r.resolve()
	return r
}

func (v *Validator) checkCompleteness(r *Report, ext *statement.Extraction, docType statement.DocumentType) {
	if ext.PortfolioValue == nil {
		r.add(SeverityWarning, CodeMissingPortfolioValue,
			"no portfolio value was extracted", "portfolio_value")
	}

	if ext.Currency == "" {
		r.add(SeverityWarning, CodeMissingCurrency,
			"no document currency was extracted", "currency")
	}

	if len(ext.Securities) == 0 {
		severity := SeverityWarning
		if docType.ExpectsHoldings() {
			severity = SeverityError
		}
		r.add(severity, CodeMissingSecurities,
			fmt.Sprintf("no securities were extracted from a %s document", docType),
			"securities")
	}
}

func (v *Validator) checkSumConsistency(r *Report, ext *statement.Extraction) {
	if ext.PortfolioValue == nil || ext.PortfolioValue.Value.IsZero() {
		return
	}

	sum, n := ext.SumValuations()
	if n == 0 {
		return
	}

	delta := sum.Sub(ext.PortfolioValue.Value).Abs()
	relative := delta.Div(ext.PortfolioValue.Value.Abs())

	if relative.GreaterThan(v.SumTolerance) {
		r.add(SeverityWarning, CodeSumMismatch,
			fmt.Sprintf(
				"security valuations sum to %s but the stated portfolio value is %s (delta %s, %s%% relative)",
				sum, ext.PortfolioValue.Value, delta,
				relative.Mul(decimal.NewFromInt(100)).Round(2),
			),
			"portfolio_value")
	}
}

func (v *Validator) checkAllocationTotal(r *Report, ext *statement.Extraction) {
	if len(ext.Allocations) == 0 {
		return
	}

	total := ext.SumAllocationPercentages()
	deviation := total.Sub(decimal.NewFromInt(100)).Abs()

	if deviation.GreaterThan(v.AllocationTolerance) {
		r.add(SeverityWarning, CodeAllocationTotal,
			fmt.Sprintf("asset allocation percentages sum to %s, deviating %s points from 100",
				total, deviation),
			"allocations")
	}
}

// checkCrossReference compares each allocation row's absolute value with the
// summed valuations of securities tagged with that asset class. Classes with
// no tagged securities are skipped: the statement's allocation table usually
// covers classes (cash, accruals) that carry no individual positions.
func (v *Validator) checkCrossReference(r *Report, ext *statement.Extraction) {
	byClass := make(map[string]decimal.Decimal)
	for _, s := range ext.Securities {
		if s.AssetClass == "" || s.Valuation == nil {
			continue
		}
		byClass[s.AssetClass] = byClass[s.AssetClass].Add(*s.Valuation)
	}

	for _, a := range ext.Allocations {
		sum, ok := byClass[a.AssetClass]
		if !ok || a.Value.IsZero() {
			continue
		}

		delta := sum.Sub(a.Value).Abs()
		relative := delta.Div(a.Value.Abs())

		if relative.GreaterThan(v.SumTolerance) {
			r.add(SeverityWarning, CodeCrossReference,
				fmt.Sprintf(
					"securities tagged %s sum to %s but the allocation row states %s",
					a.AssetClass, sum, a.Value,
				),
				a.AssetClass)
		}
	}
}

func (v *Validator) checkISINs(r *Report, ext *statement.Extraction) {
	for _, s := range ext.Securities {
		if !statement.ValidISIN(s.ISIN) {
			r.add(SeverityError, CodeISINFormat,
				fmt.Sprintf("%q does not match the ISIN format", s.ISIN),
				s.ISIN)
			continue
		}

		if !statement.ChecksumOK(s.ISIN) {
			r.add(SeverityWarning, CodeISINChecksum,
				fmt.Sprintf("%q has an invalid check digit", s.ISIN),
				s.ISIN)
		}
	}
}

func (v *Validator) checkDuplicates(r *Report, ext *statement.Extraction) {
	seen := make(map[string]int)
	for _, s := range ext.Securities {
		seen[s.ISIN]++
	}

	// iterate the securities, not the map, so issue order is deterministic
	reported := make(map[string]bool)
	for _, s := range ext.Securities {
		if seen[s.ISIN] > 1 && !reported[s.ISIN] {
			reported[s.ISIN] = true
			r.add(SeverityWarning, CodeDuplicateISIN,
				fmt.Sprintf("ISIN %s appears %d times", s.ISIN, seen[s.ISIN]),
				s.ISIN)
		}
	}
}

func (r *Report) add(severity, code, message, field string) {
	r.Issues = append(r.Issues, Issue{
		Severity: severity,
		Code:     code,
		Message:  message,
		Field:    field,
	})
}
