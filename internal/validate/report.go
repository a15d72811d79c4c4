// Package validate checks the numerical and structural consistency of a
// reconciled extraction and produces an itemized validation report. It never
// mutates the extraction it inspects.
package validate

// Severity of a validation issue.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Overall report status.
const (
	StatusPassed   = "passed"
	StatusWarnings = "passed_with_warnings"
	StatusFailed   = "failed"
)

// Issue codes. Codes are stable identifiers for the check that produced the
// issue; the affected field or identifier rides in Field.
const (
	CodeMissingPortfolioValue = "completeness/portfolio_value"
	CodeMissingCurrency       = "completeness/currency"
	CodeMissingSecurities     = "completeness/securities"
	CodeSumMismatch           = "sum_consistency"
	CodeAllocationTotal       = "allocation_total"
	CodeCrossReference        = "cross_reference"
	CodeISINFormat            = "isin_format"
	CodeISINChecksum          = "isin_checksum"
	CodeDuplicateISIN         = "duplicate_isin"
)

// Issue is one consistency problem found in an extraction.
type Issue struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Report is the outcome of validating one extraction.
type Report struct {
	Status string  `json:"status"`
	Issues []Issue `json:"issues"`
}

// HasErrors reports whether any issue carries error severity.
func (r *Report) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// resolve computes the overall status from the collected issues.
func (r *Report) resolve() {
	switch {
	case r.HasErrors():
		r.Status = StatusFailed
	case len(r.Issues) > 0:
		r.Status = StatusWarnings
	default:
		r.Status = StatusPassed
	}
}
