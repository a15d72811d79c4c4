package extract

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/avidor/statex/internal/preprocess"
	"github.com/avidor/statex/internal/statement"
)

// textSource extracts fields from one text method's output, driven by the
// entities the preprocessor already recognized in that text. Lines are the
// unit of interpretation: an ISIN line is a position, a class keyword with a
// percentage is an allocation row, a labeled total is the portfolio value.
type textSource struct {
	method   string
	priority int
}

func (s textSource) Name() string  { return "text/" + s.method }
func (s textSource) Priority() int { return s.priority }

var (
	portfolioLinePattern = regexp.MustCompile(`(?i)\b(?:total|portfolio|net)\b.*\b(?:value|assets?|wealth|worth)\b`)
	riskProfilePattern   = regexp.MustCompile(`(?i)\brisk\s+profile\s*[:\-]?\s*([A-Za-z][A-Za-z \-]{1,30})`)
)

// textLine is one line of a method's text plus the entities found on it.
type textLine struct {
	text     string
	entities []preprocess.Entity
}

func (s textSource) Candidates(_ context.Context, pre *preprocess.Result) (CandidateSet, error) {
	text := pre.Text(s.method)
	if text == "" {
		return nil, nil
	}

	lines := splitEntityLines(text, pre.Entities, s.method)

	var set CandidateSet
	var docCurrency string

	for _, line := range lines {
		if isin := line.first(preprocess.EntityISIN); isin != nil {
			securityFromLine(&set, isin.Raw, line)
			continue
		}

		if portfolioLinePattern.MatchString(line.text) {
			if v := line.largestMoney(); v != "" {
				set.Add(FieldPortfolioValue, v)
				if c := line.first(preprocess.EntityCurrency); c != nil {
					docCurrency = c.Normalized
				}
			}
			continue
		}

		allocationFromLine(&set, line)
	}

	if docCurrency == "" {
		docCurrency = dominantCurrency(pre.Entities, s.method)
	}
	set.Add(FieldCurrency, docCurrency)

	if m := riskProfilePattern.FindStringSubmatch(text); m != nil {
		set.Add(FieldRiskProfile, strings.ToLower(strings.TrimSpace(m[1])))
	}

	return set, nil
}

// splitEntityLines cuts text into lines and attaches each entity of the
// given method to the line its offset falls on.
func splitEntityLines(text string, entities []preprocess.Entity, method string) []textLine {
	raw := strings.Split(text, "\n")
	lines := make([]textLine, len(raw))

	starts := make([]int, len(raw))
	offset := 0
	for i, l := range raw {
		starts[i] = offset
		lines[i].text = l
		offset += len(l) + 1
	}

	for _, e := range entities {
		if e.Method != method {
			continue
		}
		// the line whose start is the greatest one not past the offset
		i := sort.Search(len(starts), func(i int) bool { return starts[i] > e.Offset }) - 1
		if i >= 0 && i < len(lines) {
			lines[i].entities = append(lines[i].entities, e)
		}
	}

	return lines
}

// first returns the line's first entity of the given type in offset order.
func (l textLine) first(entityType string) *preprocess.Entity {
	for i := range l.entities {
		if l.entities[i].Type == entityType {
			return &l.entities[i]
		}
	}
	return nil
}

// amounts returns the line's money entities in offset order, excluding
// matches that are really fragments of a date or percentage on the same
// line.
func (l textLine) amounts() []preprocess.Entity {
	var spans [][2]int
	for _, e := range l.entities {
		if e.Type == preprocess.EntityDate || e.Type == preprocess.EntityPercentage {
			spans = append(spans, [2]int{e.Offset, e.Offset + len(e.Raw)})
		}
	}

	var out []preprocess.Entity
	for _, e := range l.entities {
		if e.Type != preprocess.EntityMoney {
			continue
		}
		contained := false
		for _, span := range spans {
			if e.Offset >= span[0] && e.Offset+len(e.Raw) <= span[1] {
				contained = true
				break
			}
		}
		if !contained {
			out = append(out, e)
		}
	}
	return out
}

// largestMoney returns the line's largest normalized amount, or "".
func (l textLine) largestMoney() string {
	cells := make([]string, 0, len(l.entities))
	for _, e := range l.amounts() {
		cells = append(cells, e.Normalized)
	}
	return largestNumber(cells)
}

// securityFromLine reads one position from a holdings line. Amount order
// follows statement convention: quantity first, price next, valuation last.
func securityFromLine(set *CandidateSet, isin string, line textLine) {
	amounts := lineAmounts(line)

	switch len(amounts) {
	case 0:
	case 1:
		set.Add(statement.SecurityField(isin, AttrValuation), amounts[0])
	case 2:
		set.Add(statement.SecurityField(isin, AttrQuantity), amounts[0])
		set.Add(statement.SecurityField(isin, AttrValuation), amounts[1])
	default:
		set.Add(statement.SecurityField(isin, AttrQuantity), amounts[0])
		set.Add(statement.SecurityField(isin, AttrPrice), amounts[1])
		set.Add(statement.SecurityField(isin, AttrValuation), amounts[len(amounts)-1])
	}

	if c := line.first(preprocess.EntityCurrency); c != nil {
		set.Add(statement.SecurityField(isin, AttrCurrency), c.Normalized)
	}
	if p := line.first(preprocess.EntityPercentage); p != nil {
		set.Add(statement.SecurityField(isin, AttrCouponRate), p.Normalized)
	}
	if d := line.first(preprocess.EntityDate); d != nil {
		set.Add(statement.SecurityField(isin, AttrMaturity), d.Raw)
	}
	if class := canonicalClass(line.text); class != "" {
		set.Add(statement.SecurityField(isin, AttrAssetClass), class)
	}

	set.Add(statement.SecurityField(isin, AttrName), nameFromLine(line))
}

func lineAmounts(line textLine) []string {
	entities := line.amounts()
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Normalized)
	}
	return out
}

// nameFromLine is the line text with every recognized entity removed;
// whatever words remain next to an ISIN are the security's name.
func nameFromLine(line textLine) string {
	name := line.text
	for _, e := range line.entities {
		name = strings.Replace(name, e.Raw, " ", 1)
	}
	name = strings.Join(strings.Fields(name), " ")
	name = strings.Trim(name, " -:,.")
	if len(name) < 3 {
		return ""
	}
	return name
}

// allocationFromLine reads an asset-class breakdown line: a known class
// keyword plus a percentage, optionally with an amount.
func allocationFromLine(set *CandidateSet, line textLine) {
	pct := line.first(preprocess.EntityPercentage)
	if pct == nil {
		return
	}

	class := canonicalClass(line.text)
	if class == "" {
		return
	}

	set.Add(AllocationField(class, AttrPercentage), pct.Normalized)
	set.Add(AllocationField(class, AttrValue), line.largestMoney())
}

// dominantCurrency is the most frequent currency entity for the method,
// ties resolved lexicographically so the answer is stable.
func dominantCurrency(entities []preprocess.Entity, method string) string {
	counts := make(map[string]int)
	for _, e := range entities {
		if e.Method == method && e.Type == preprocess.EntityCurrency {
			counts[e.Normalized]++
		}
	}

	best := ""
	for code, n := range counts {
		switch {
		case best == "", n > counts[best], n == counts[best] && code < best:
			best = code
		}
	}
	return best
}
