package extract

import (
	"context"
	"strings"

	"github.com/avidor/statex/internal/preprocess"
)

// Source proposes candidate values for document fields from one view of the
// preprocessed document. Sources never reconcile; they only report what they
// saw, and the reconciler weighs the votes.
type Source interface {
	Name() string
	Priority() int
	Candidates(ctx context.Context, pre *preprocess.Result) (CandidateSet, error)
}

// assetClassKeywords maps statement vocabulary onto canonical asset classes.
// Order matters: more specific phrases come before the generic words they
// contain.
var assetClassKeywords = []struct {
	keyword string
	class   string
}{
	{"fixed income", "bonds"},
	{"bond", "bonds"},
	{"money market", "cash"},
	{"liquidit", "cash"},
	{"cash", "cash"},
	{"real estate", "real_estate"},
	{"property", "real_estate"},
	{"commodit", "commodities"},
	{"alternative", "alternatives"},
	{"hedge", "alternatives"},
	{"equit", "equities"},
	{"stock", "equities"},
	{"share", "equities"},
	{"fund", "funds"},
}

// canonicalClass maps free text onto a canonical asset class, or "" when no
// known vocabulary appears.
func canonicalClass(s string) string {
	lower := strings.ToLower(s)
	for _, kw := range assetClassKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.class
		}
	}
	return ""
}

// normalizeNumber runs the shared amount normalization and returns "" for
// cells that are not numeric.
func normalizeNumber(s string) string {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" || !strings.ContainsAny(s, "0123456789") {
		return ""
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != ',' && r != '\'' && r != ' ' {
			return ""
		}
	}
	normalized, ok := preprocess.NormalizeAmount(s)
	if !ok {
		return ""
	}
	return normalized
}
