package statement

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestParseDocumentType(t *testing.T) {
	tests := []struct {
		hint string
		want DocumentType
	}{
		{"portfolio_report", TypePortfolioReport},
		{"bank_statement", TypeBankStatement},
		{"tax_document", TypeTaxDocument},
		{"", TypeOther},
		{"unknown_thing", TypeOther},
		{"other", TypeOther},
	}

	for _, tt := range tests {
		if got := ParseDocumentType(tt.hint); got != tt.want {
			t.Errorf("ParseDocumentType(%q) = %q, want %q", tt.hint, got, tt.want)
		}
	}
}

func TestExpectsHoldings(t *testing.T) {
	if !TypePortfolioReport.ExpectsHoldings() {
		t.Error("portfolio_report should expect holdings")
	}
	if !TypeInvestmentSummary.ExpectsHoldings() {
		t.Error("investment_summary should expect holdings")
	}
	if TypeBankStatement.ExpectsHoldings() {
		t.Error("bank_statement should not expect holdings")
	}
}

func TestSumValuations(t *testing.T) {
	e := NewExtraction()
	e.Securities = []Security{
		{ISIN: "US0378331005", Valuation: decPtr("100.50")},
		{ISIN: "XS2530201644", Valuation: decPtr("49.50")},
		{ISIN: "DE0005140008"}, // no valuation extracted
	}

	sum, n := e.SumValuations()
	if !sum.Equal(dec("150")) {
		t.Errorf("sum = %s, want 150", sum)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestNormalizeOrdering(t *testing.T) {
	e := NewExtraction()
	e.Securities = []Security{{ISIN: "XS2530201644"}, {ISIN: "CH0012032048"}}
	e.Allocations = []AssetAllocation{
		{AssetClass: "Equities", Percentage: dec("40")},
		{AssetClass: "Bonds", Percentage: dec("60")},
	}

	e.Normalize()

	if e.Securities[0].ISIN != "CH0012032048" {
		t.Errorf("securities not sorted by ISIN: %v", e.Securities)
	}
	if e.Allocations[0].AssetClass != "Bonds" {
		t.Errorf("allocations not sorted by class: %v", e.Allocations)
	}
	if !e.SumAllocationPercentages().Equal(dec("100")) {
		t.Errorf("allocation sum = %s, want 100", e.SumAllocationPercentages())
	}
}
