package extract

import (
	"github.com/shopspring/decimal"
)

// sourcedValue is one source's vote for a field, tagged with the source's
// identity and priority.
type sourcedValue struct {
	value    string
	source   string
	priority int
}

// resolution is the reconciled outcome for one field.
type resolution struct {
	value      string
	source     string
	confidence float64
}

// reconciler implements the voting rules. It is pure: the same candidate
// lists always produce the same resolutions.
type reconciler struct {
	tolerance decimal.Decimal
}

func newReconciler(tolerance float64) reconciler {
	return reconciler{tolerance: decimal.NewFromFloat(tolerance)}
}

// resolve picks a value from candidates ordered by ascending priority.
// Unanimous agreement yields confidence 1.0; disagreement goes to the
// largest agreeing cluster, ties broken by source priority, with confidence
// agreeing/total; a single candidate yields 0.5; no candidates, no field.
func (r reconciler) resolve(cands []sourcedValue) (resolution, bool) {
	cands = dedupeBySource(cands)

	switch len(cands) {
	case 0:
		return resolution{}, false
	case 1:
		return resolution{
			value:      cands[0].value,
			source:     cands[0].source,
			confidence: 0.5,
		}, true
	}

	var clusters [][]sourcedValue
	for _, c := range cands {
		placed := false
		for i, cluster := range clusters {
			if r.agrees(cluster[0].value, c.value) {
				clusters[i] = append(cluster, c)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, []sourcedValue{c})
		}
	}

	// clusters inherit candidate order, so the first cluster of the winning
	// size is also the one anchored by the highest-priority source
	winner := clusters[0]
	for _, cluster := range clusters[1:] {
		if len(cluster) > len(winner) {
			winner = cluster
		}
	}

	return resolution{
		value:      winner[0].value,
		source:     winner[0].source,
		confidence: float64(len(winner)) / float64(len(cands)),
	}, true
}

// agrees reports whether two candidate values count as the same answer.
// Values that both parse as decimals agree within the relative tolerance;
// everything else requires exact equality.
func (r reconciler) agrees(a, b string) bool {
	if a == b {
		return true
	}

	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	if errA != nil || errB != nil {
		return false
	}

	diff := da.Sub(db).Abs()
	denom := decimal.Max(da.Abs(), db.Abs())
	if denom.IsZero() {
		return true
	}

	return diff.Div(denom).Cmp(r.tolerance) <= 0
}

// dedupeBySource keeps each source's first vote for a field. Candidates
// arrive ordered by priority, so this also preserves priority order.
func dedupeBySource(cands []sourcedValue) []sourcedValue {
	seen := make(map[string]bool, len(cands))
	out := cands[:0:0]
	for _, c := range cands {
		if seen[c.source] {
			continue
		}
		seen[c.source] = true
		out = append(out, c)
	}
	return out
}
