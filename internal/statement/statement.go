// Package statement defines the core value types of the extraction domain:
// portfolio value, securities, asset allocations, and the reconciled
// extraction aggregate with per-field confidence and provenance.
package statement

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// DocumentType classifies the kind of financial document being processed.
type DocumentType string

const (
	TypePortfolioReport    DocumentType = "portfolio_report"
	TypeBankStatement      DocumentType = "bank_statement"
	TypeInvestmentSummary  DocumentType = "investment_summary"
	TypeFinancialStatement DocumentType = "financial_statement"
	TypeTaxDocument        DocumentType = "tax_document"
	TypeOther              DocumentType = "other"
)

// ParseDocumentType returns the DocumentType for hint, falling back to
// TypeOther for unrecognized or empty hints.
func ParseDocumentType(hint string) DocumentType {
	switch DocumentType(hint) {
	case TypePortfolioReport, TypeBankStatement, TypeInvestmentSummary,
		TypeFinancialStatement, TypeTaxDocument:
		return DocumentType(hint)
	default:
		return TypeOther
	}
}

// ExpectsHoldings reports whether documents of this type are expected to
// list individual security positions.
func (t DocumentType) ExpectsHoldings() bool {
	return t == TypePortfolioReport || t == TypeInvestmentSummary
}

// PortfolioValue is the stated total value of the portfolio, the reference
// against which security valuations and allocations are cross-checked.
type PortfolioValue struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// Security is a single position in the statement, keyed by ISIN.
// Name may be empty when extraction fails to locate one next to the ISIN.
// Quantity, Price, and Valuation are nil when no tool produced them.
type Security struct {
	ISIN       string           `json:"isin"`
	Name       string           `json:"name,omitempty"`
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Valuation  *decimal.Decimal `json:"valuation,omitempty"`
	Currency   string           `json:"currency,omitempty"`
	AssetClass string           `json:"asset_class,omitempty"`
	CouponRate *decimal.Decimal `json:"coupon_rate,omitempty"`
	Maturity   string           `json:"maturity,omitempty"`
}

// AssetAllocation is one row of the portfolio's asset-class breakdown.
type AssetAllocation struct {
	AssetClass string          `json:"asset_class"`
	Value      decimal.Decimal `json:"value"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Extraction is the reconciled result of one processing run. Absent fields
// stay nil/empty rather than defaulting to zero, so downstream reporting can
// distinguish "not found" from "found to be zero".
type Extraction struct {
	PortfolioValue *PortfolioValue    `json:"portfolio_value,omitempty"`
	Currency       string             `json:"currency,omitempty"`
	RiskProfile    string             `json:"risk_profile,omitempty"`
	Securities     []Security         `json:"securities"`
	Allocations    []AssetAllocation  `json:"allocations"`
	Confidence     map[string]float64 `json:"confidence"`
	Provenance     map[string]string  `json:"provenance"`
}

// NewExtraction returns an Extraction with initialized maps and slices.
func NewExtraction() *Extraction {
	return &Extraction{
		Securities:  make([]Security, 0),
		Allocations: make([]AssetAllocation, 0),
		Confidence:  make(map[string]float64),
		Provenance:  make(map[string]string),
	}
}

// SecurityField names a reconciled attribute of one security for use as a
// confidence/provenance key, e.g. "security:XS2530201644:valuation".
func SecurityField(isin, attr string) string {
	return fmt.Sprintf("security:%s:%s", isin, attr)
}

// SumValuations returns the sum of all present security valuations and the
// count of securities that carried one.
func (e *Extraction) SumValuations() (decimal.Decimal, int) {
	sum := decimal.Zero
	n := 0
	for _, s := range e.Securities {
		if s.Valuation != nil {
			sum = sum.Add(*s.Valuation)
			n++
		}
	}
	return sum, n
}

// SumAllocationPercentages returns the total of all allocation percentages.
func (e *Extraction) SumAllocationPercentages() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range e.Allocations {
		sum = sum.Add(a.Percentage)
	}
	return sum
}

// Normalize sorts securities by ISIN and allocations by asset class so that
// two extractions derived from the same input compare equal byte-for-byte.
func (e *Extraction) Normalize() {
	sort.Slice(e.Securities, func(i, j int) bool {
		return e.Securities[i].ISIN < e.Securities[j].ISIN
	})
	sort.Slice(e.Allocations, func(i, j int) bool {
		return e.Allocations[i].AssetClass < e.Allocations[j].AssetClass
	})
}
