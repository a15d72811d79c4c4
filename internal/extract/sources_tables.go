package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/avidor/statex/internal/preprocess"
	"github.com/avidor/statex/internal/statement"
)

// tablesSource reads detected tables. Tables are the highest-priority source:
// when layout analysis found a holdings grid, its cell boundaries beat any
// guess made from flattened text.
type tablesSource struct{}

func (tablesSource) Name() string  { return "tables" }
func (tablesSource) Priority() int { return 0 }

var totalRowPattern = regexp.MustCompile(`(?i)\btotal\b`)

func (tablesSource) Candidates(_ context.Context, pre *preprocess.Result) (CandidateSet, error) {
	var set CandidateSet

	for _, table := range pre.Tables {
		cols := classifyHeader(table.Header)

		for _, row := range table.Rows {
			if isin := findISIN(row, cols); isin != "" {
				securityFromRow(&set, isin, row, cols)
				continue
			}
			if totalRowPattern.MatchString(strings.Join(row, " ")) {
				if v := largestNumber(row); v != "" {
					set.Add(FieldPortfolioValue, v)
				}
				continue
			}
			allocationFromRow(&set, row, cols)
		}
	}

	return set, nil
}

// column attribute labels; percentage marks allocation tables.
const (
	colISIN       = "isin"
	colPercentage = "percentage"
)

// classifyHeader maps header cells to the attribute each column carries.
func classifyHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, cell := range header {
		attr := classifyHeaderCell(cell)
		if attr == "" {
			continue
		}
		if _, taken := cols[attr]; !taken {
			cols[attr] = i
		}
	}
	return cols
}

// classifyHeaderCell names the attribute a header cell describes. Specific
// phrases are checked before the generic words they contain, so "market
// value" lands on valuation rather than a bare "value" match elsewhere.
func classifyHeaderCell(cell string) string {
	lower := strings.ToLower(strings.TrimSpace(cell))
	switch {
	case strings.Contains(lower, "isin"):
		return colISIN
	case strings.Contains(lower, "asset class"), lower == "class", lower == "type":
		return AttrAssetClass
	case strings.Contains(lower, "maturity"):
		return AttrMaturity
	case strings.Contains(lower, "coupon"):
		return AttrCouponRate
	case strings.Contains(lower, "currency"), lower == "ccy":
		return AttrCurrency
	case strings.Contains(lower, "quantity"), strings.Contains(lower, "units"),
		strings.Contains(lower, "nominal"), lower == "qty":
		return AttrQuantity
	case strings.Contains(lower, "price"):
		return AttrPrice
	case strings.Contains(lower, "%"), strings.Contains(lower, "percent"),
		strings.Contains(lower, "allocation"), strings.Contains(lower, "weight"):
		return colPercentage
	case strings.Contains(lower, "name"), strings.Contains(lower, "description"),
		strings.Contains(lower, "security"), strings.Contains(lower, "instrument"):
		return AttrName
	case strings.Contains(lower, "valuation"), strings.Contains(lower, "value"),
		strings.Contains(lower, "amount"):
		return AttrValuation
	}
	return ""
}

// findISIN locates the row's ISIN from the mapped column, falling back to
// scanning every cell.
func findISIN(row []string, cols map[string]int) string {
	if i, ok := cols[colISIN]; ok && i < len(row) {
		if cell := strings.TrimSpace(row[i]); statement.ValidISIN(cell) {
			return cell
		}
	}
	for _, cell := range row {
		if cell = strings.TrimSpace(cell); statement.ValidISIN(cell) {
			return cell
		}
	}
	return ""
}

func securityFromRow(set *CandidateSet, isin string, row []string, cols map[string]int) {
	cell := func(attr string) string {
		i, ok := cols[attr]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	set.Add(statement.SecurityField(isin, AttrName), securityName(cell(AttrName), isin, row))
	set.Add(statement.SecurityField(isin, AttrQuantity), normalizeNumber(cell(AttrQuantity)))
	set.Add(statement.SecurityField(isin, AttrPrice), normalizeNumber(cell(AttrPrice)))
	set.Add(statement.SecurityField(isin, AttrValuation), normalizeNumber(cell(AttrValuation)))
	set.Add(statement.SecurityField(isin, AttrCurrency), strings.ToUpper(cell(AttrCurrency)))
	set.Add(statement.SecurityField(isin, AttrMaturity), cell(AttrMaturity))

	if pct := normalizeNumber(cell(AttrCouponRate)); pct != "" {
		set.Add(statement.SecurityField(isin, AttrCouponRate), pct)
	}
	if class := canonicalClass(cell(AttrAssetClass)); class != "" {
		set.Add(statement.SecurityField(isin, AttrAssetClass), class)
	}
}

// securityName picks the mapped name cell, or the longest cell that is
// neither numeric nor the ISIN when the table has no name column.
func securityName(mapped, isin string, row []string) string {
	if mapped != "" && normalizeNumber(mapped) == "" {
		return mapped
	}

	best := ""
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == isin || normalizeNumber(cell) != "" {
			continue
		}
		if len(cell) > len(best) {
			best = cell
		}
	}
	return best
}

// allocationFromRow emits allocation candidates from rows of a breakdown
// table: a recognizable asset class plus a percentage column.
func allocationFromRow(set *CandidateSet, row []string, cols map[string]int) {
	i, ok := cols[colPercentage]
	if !ok || i >= len(row) {
		return
	}

	pct := normalizeNumber(row[i])
	if pct == "" || len(row) == 0 {
		return
	}

	class := canonicalClass(row[0])
	if class == "" {
		return
	}

	set.Add(AllocationField(class, AttrPercentage), pct)
	if j, ok := cols[AttrValuation]; ok && j < len(row) && j != i {
		set.Add(AllocationField(class, AttrValue), normalizeNumber(row[j]))
	}
}

// largestNumber returns the numerically largest cell of a row, normalized.
func largestNumber(row []string) string {
	best := ""
	var bestLen int
	for _, cell := range row {
		v := normalizeNumber(cell)
		if v == "" {
			continue
		}
		// compare by integer-part length then lexicographically; amounts on
		// total rows differ by orders of magnitude, not by fractions
		intLen := len(strings.SplitN(v, ".", 2)[0])
		if intLen > bestLen || (intLen == bestLen && v > best) {
			best, bestLen = v, intLen
		}
	}
	return best
}
