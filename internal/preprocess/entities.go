package preprocess

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Rhymond/go-money"
)

var (
	isinPattern       = regexp.MustCompile(`\b[A-Z]{2}[A-Z0-9]{9}[0-9]\b`)
	currencyPattern   = regexp.MustCompile(`\b[A-Z]{3}\b`)
	percentagePattern = regexp.MustCompile(`\b\d{1,3}(?:[.,]\d{1,4})?\s?%`)
	// space is deliberately not a grouping separator here: it would glue
	// adjacent column values into one amount
	moneyPattern = regexp.MustCompile(`\b\d{1,3}(?:[',.]\d{3})+(?:[.,]\d{1,2})?\b|\b\d+[.,]\d{2}\b`)
	datePattern  = regexp.MustCompile(`\b(?:\d{4}-\d{2}-\d{2}|\d{1,2}[./]\d{1,2}[./]\d{2,4})\b`)
)

// ScanEntities recognizes financial entities across every raw text. Each
// entity records the method whose text it came from and the byte offset of
// the match, so the extractor can weigh agreement between methods.
func ScanEntities(texts []RawText) []Entity {
	var entities []Entity

	for _, t := range texts {
		entities = append(entities, scanText(t.Method, t.Text)...)
	}

	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].Method != entities[j].Method {
			return entities[i].Method < entities[j].Method
		}
		return entities[i].Offset < entities[j].Offset
	})

	return entities
}

func scanText(method, text string) []Entity {
	var entities []Entity

	add := func(entityType string, locs [][]int, normalize func(string) (string, bool)) {
		for _, loc := range locs {
			raw := text[loc[0]:loc[1]]
			normalized, ok := normalize(raw)
			if !ok {
				continue
			}
			entities = append(entities, Entity{
				Type:       entityType,
				Raw:        raw,
				Normalized: normalized,
				Method:     method,
				Offset:     loc[0],
			})
		}
	}

	add(EntityISIN, isinPattern.FindAllStringIndex(text, -1), identity)
	add(EntityCurrency, currencyPattern.FindAllStringIndex(text, -1), normalizeCurrency)
	add(EntityPercentage, percentagePattern.FindAllStringIndex(text, -1), normalizePercentage)
	add(EntityMoney, moneyPattern.FindAllStringIndex(text, -1), NormalizeAmount)
	add(EntityDate, datePattern.FindAllStringIndex(text, -1), identity)

	return entities
}

func identity(s string) (string, bool) { return s, true }

// normalizeCurrency accepts only codes the currency registry knows. This is
// what keeps arbitrary three-letter words like "THE" or "AND" out.
func normalizeCurrency(code string) (string, bool) {
	if money.GetCurrency(code) == nil {
		return "", false
	}
	return code, true
}

func normalizePercentage(raw string) (string, bool) {
	v := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	return strings.ReplaceAll(v, ",", "."), true
}

// NormalizeAmount strips grouping separators and canonicalizes the decimal
// point. Statements mix conventions: "19'510'599", "1,234.56", "1.234,56",
// and "1 234 567.89" all normalize to plain digits with a '.' decimal.
func NormalizeAmount(raw string) (string, bool) {
	s := strings.NewReplacer("'", "", " ", "").Replace(raw)

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")

	switch {
	case comma >= 0 && dot >= 0:
		// the later separator is the decimal point
		if dot > comma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case comma >= 0:
		s = normalizeSingleSeparator(s, ",")
	case dot >= 0:
		s = normalizeSingleSeparator(s, ".")
	}

	if s == "" {
		return "", false
	}
	return s, true
}

// normalizeSingleSeparator decides whether a lone separator kind is decimal
// or grouping: one occurrence followed by 1-2 digits reads as decimal,
// anything else as grouping.
func normalizeSingleSeparator(s, sep string) string {
	if strings.Count(s, sep) == 1 {
		idx := strings.Index(s, sep)
		if frac := len(s) - idx - 1; frac >= 1 && frac <= 2 {
			return strings.Replace(s, sep, ".", 1)
		}
	}
	return strings.ReplaceAll(s, sep, "")
}
