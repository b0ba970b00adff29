package entities

import (
	"reflect"
	"strings"
	"testing"
)

func TestClampSimilarity(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-0.3, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.7, 1},
	}
	for _, c := range cases {
		if got := ClampSimilarity(c.in); got != c.want {
			t.Errorf("ClampSimilarity(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}

func TestCandidateSet_DedupePreservesFirstSeenOrder(t *testing.T) {
	set := &CandidateSet{
		IDs:       []string{"a", "b", "a", "c", "b"},
		Documents: []string{"d1", "d2", "d3", "d4", "d5"},
		Metadatas: make([]CandidateMeta, 5),
		Distances: []float64{0.1, 0.2, 0.3, 0.4, 0.5},
	}

	deduped := set.Dedupe()

	if !reflect.DeepEqual(deduped.IDs, []string{"a", "b", "c"}) {
		t.Errorf("unexpected id order: %v", deduped.IDs)
	}
	if !reflect.DeepEqual(deduped.Documents, []string{"d1", "d2", "d4"}) {
		t.Errorf("duplicates should keep their first document: %v", deduped.Documents)
	}
	if !reflect.DeepEqual(deduped.Distances, []float64{0.1, 0.2, 0.4}) {
		t.Errorf("duplicates should keep their first distance: %v", deduped.Distances)
	}
}

func TestCandidateSet_DedupeNoDuplicates(t *testing.T) {
	set := &CandidateSet{
		IDs:       []string{"x", "y"},
		Documents: []string{"d1", "d2"},
		Metadatas: make([]CandidateMeta, 2),
		Distances: []float64{0.1, 0.2},
	}
	if got := set.Dedupe().Len(); got != 2 {
		t.Errorf("expected 2 candidates, got %d", got)
	}
}

func TestCandidateSet_SummaryEmpty(t *testing.T) {
	empty := &CandidateSet{}
	if got := empty.Summary(); got != "No candidates available" {
		t.Errorf("unexpected empty summary: %s", got)
	}
}

func TestCandidateSet_SummaryContainsCandidates(t *testing.T) {
	set := &CandidateSet{
		IDs:       []string{"7"},
		Documents: []string{"Q: refunds?\nA: 30 days"},
		Metadatas: []CandidateMeta{{Question: "refunds?", Answer: "30 days"}},
		Distances: []float64{0.2},
	}

	summary := set.Summary()
	if !strings.Contains(summary, "[FAQ#7]") {
		t.Errorf("summary should tag the candidate id: %s", summary)
	}
	if !strings.Contains(summary, "30 days") {
		t.Errorf("summary should include the answer: %s", summary)
	}
	if !strings.Contains(summary, "distance=0.2000") {
		t.Errorf("summary should include the distance: %s", summary)
	}
}

func TestCandidateSet_LenNil(t *testing.T) {
	var set *CandidateSet
	if set.Len() != 0 {
		t.Error("nil set should have length 0")
	}
}
