package extract

import (
	"testing"
)

func TestResolveUnanimous(t *testing.T) {
	r := newReconciler(0.005)

	res, ok := r.resolve([]sourcedValue{
		{value: "19510599", source: "tables", priority: 0},
		{value: "19510599", source: "text/pdftext", priority: 1},
		{value: "19510599", source: "text/plaintext", priority: 2},
	})

	if !ok {
		t.Fatal("resolve() found no value")
	}
	if res.value != "19510599" {
		t.Errorf("value = %q", res.value)
	}
	if res.confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", res.confidence)
	}
	if res.source != "tables" {
		t.Errorf("source = %q, want tables", res.source)
	}
}

func TestResolveWithinTolerance(t *testing.T) {
	r := newReconciler(0.005)

	// 19510599 vs 19520599 differ by ~0.05%, inside the 0.5% tolerance
	res, ok := r.resolve([]sourcedValue{
		{value: "19510599", source: "text/pdftext", priority: 1},
		{value: "19520599", source: "text/plaintext", priority: 2},
	})

	if !ok {
		t.Fatal("resolve() found no value")
	}
	if res.confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0 for agreement within tolerance", res.confidence)
	}
	if res.value != "19510599" {
		t.Errorf("value = %q, want the higher-priority representative", res.value)
	}
}

func TestResolveDisagreementFallsToPriority(t *testing.T) {
	r := newReconciler(0.005)

	// 5002 vs 5100 is a ~1.9% gap, a genuine disagreement; the tie between
	// two one-vote clusters goes to the higher-priority source
	res, ok := r.resolve([]sourcedValue{
		{value: "5002.00", source: "text/pdftext", priority: 1},
		{value: "5100.00", source: "text/plaintext", priority: 2},
	})

	if !ok {
		t.Fatal("resolve() found no value")
	}
	if res.value != "5002.00" {
		t.Errorf("value = %q, want 5002.00", res.value)
	}
	if res.confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", res.confidence)
	}
	if res.source != "text/pdftext" {
		t.Errorf("source = %q", res.source)
	}
}

func TestResolveMajority(t *testing.T) {
	r := newReconciler(0.005)

	res, ok := r.resolve([]sourcedValue{
		{value: "5100.00", source: "tables", priority: 0},
		{value: "5002.00", source: "text/pdftext", priority: 1},
		{value: "5002.00", source: "text/plaintext", priority: 2},
	})

	if !ok {
		t.Fatal("resolve() found no value")
	}
	if res.value != "5002.00" {
		t.Errorf("value = %q, want the majority value", res.value)
	}
	if got := res.confidence; got < 0.66 || got > 0.67 {
		t.Errorf("confidence = %v, want 2/3", got)
	}
}

func TestResolveSingleSource(t *testing.T) {
	r := newReconciler(0.005)

	res, ok := r.resolve([]sourcedValue{
		{value: "balanced", source: "text/pdftext", priority: 1},
	})

	if !ok {
		t.Fatal("resolve() found no value")
	}
	if res.confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5 for single source", res.confidence)
	}
}

func TestResolveEmpty(t *testing.T) {
	r := newReconciler(0.005)

	if _, ok := r.resolve(nil); ok {
		t.Error("resolve(nil) produced a value")
	}
}

func TestResolveDedupesBySource(t *testing.T) {
	r := newReconciler(0.005)

	// a source repeating itself is one vote, not two
	res, ok := r.resolve([]sourcedValue{
		{value: "100", source: "text/pdftext", priority: 1},
		{value: "100", source: "text/pdftext", priority: 1},
	})

	if !ok {
		t.Fatal("resolve() found no value")
	}
	if res.confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", res.confidence)
	}
}

func TestResolveStringsRequireExactMatch(t *testing.T) {
	r := newReconciler(0.005)

	res, ok := r.resolve([]sourcedValue{
		{value: "balanced", source: "text/pdftext", priority: 1},
		{value: "Balanced Growth", source: "text/plaintext", priority: 2},
	})

	if !ok {
		t.Fatal("resolve() found no value")
	}
	if res.value != "balanced" || res.confidence != 0.5 {
		t.Errorf("resolution = %+v, want balanced at 0.5", res)
	}
}
