package extract

import "fmt"

// Document-level field keys. Security attributes are keyed through
// statement.SecurityField, allocations through AllocationField, so every
// reconciled value shares one flat namespace with the confidence and
// provenance maps.
const (
	FieldPortfolioValue = "portfolio_value"
	FieldCurrency       = "currency"
	FieldRiskProfile    = "risk_profile"
)

// Security attribute names used in security field keys.
const (
	AttrName       = "name"
	AttrQuantity   = "quantity"
	AttrPrice      = "price"
	AttrValuation  = "valuation"
	AttrCurrency   = "currency"
	AttrAssetClass = "asset_class"
	AttrCouponRate = "coupon_rate"
	AttrMaturity   = "maturity"
)

// Allocation attribute names used in allocation field keys.
const (
	AttrPercentage = "percentage"
	AttrValue      = "value"
)

// AllocationField names a reconciled attribute of one allocation row,
// e.g. "allocation:bonds:percentage".
func AllocationField(class, attr string) string {
	return fmt.Sprintf("allocation:%s:%s", class, attr)
}

// Candidate is one source's proposed value for one field. Values are
// canonical strings: normalized decimal text for numeric fields, ISO codes
// for currencies.
type Candidate struct {
	Field string
	Value string
}

// CandidateSet is everything one source proposed for a document.
type CandidateSet []Candidate

// Add appends a candidate, dropping empty values so sources can propose
// unconditionally.
func (s *CandidateSet) Add(field, value string) {
	if value == "" {
		return
	}
	*s = append(*s, Candidate{Field: field, Value: value})
}
