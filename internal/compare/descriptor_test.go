package compare

import (
	"math"
	"testing"
)

func TestParseFeatures(t *testing.T) {
	mask, err := ParseFeatures([]string{"tanimoto", " length_diff ", "tanimoto"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(mask) != 2 {
		t.Fatalf("expected 2 features after dedup, got %d: %v", len(mask), mask)
	}
	if mask[0] != FeatureTanimoto || mask[1] != FeatureLengthDiff {
		t.Errorf("unexpected order: %v", mask)
	}

	if _, err := ParseFeatures([]string{"bogus"}); err == nil {
		t.Error("expected error for unknown feature")
	}
	if _, err := ParseFeatures(nil); err == nil {
		t.Error("expected error for empty selection")
	}
}

func TestCompareIdenticalRecords(t *testing.T) {
	d := NewDescriptor()

	values, err := d.Compare("c1ccccc1", "c1ccccc1", AllFeatures)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	if v := values[FeatureTanimoto]; v != 1.0 {
		t.Errorf("expected tanimoto 1.0 for identical records, got %f", v)
	}
	for _, id := range []FeatureID{FeatureAtomCountDiff, FeatureBondCountDiff, FeatureRingClosureDiff, FeatureLengthDiff} {
		if v := values[id]; v != 0 {
			t.Errorf("expected %s 0 for identical records, got %f", id, v)
		}
	}
}

func TestCompareLengthDiff(t *testing.T) {
	d := NewDescriptor()

	values, err := d.Compare("CCO", "CCOCC", FeatureMask{FeatureLengthDiff})
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if v := values[FeatureLengthDiff]; v != 2 {
		t.Errorf("expected length diff 2, got %f", v)
	}
}

func TestCompareEmptyRecordGivesNaN(t *testing.T) {
	d := NewDescriptor()

	values, err := d.Compare("", "CCO", AllFeatures)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	if !math.IsNaN(values[FeatureTanimoto]) {
		t.Errorf("expected NaN tanimoto for empty record, got %f", values[FeatureTanimoto])
	}
	if !math.IsNaN(values[FeatureAtomCountDiff]) {
		t.Errorf("expected NaN atom count diff for empty record, got %f", values[FeatureAtomCountDiff])
	}
	if v := values[FeatureLengthDiff]; v != 3 {
		t.Errorf("expected length diff 3, got %f", v)
	}
}

func TestCompareEmptyMask(t *testing.T) {
	if _, err := NewDescriptor().Compare("C", "C", nil); err == nil {
		t.Error("expected error for empty mask")
	}
}

func TestHeavyAtomCount(t *testing.T) {
	tests := []struct {
		record string
		want   int
	}{
		{"CCO", 3},
		{"CCCl", 3},       // Cl is one atom
		{"BrCCBr", 4},     // Br is one atom
		{"c1ccccc1", 6},   // aromatic carbons
		{"C[H]", 1},       // hydrogen skipped
		{"C(=O)N", 3},
	}

	for _, tt := range tests {
		if got := heavyAtomCount(tt.record); got != tt.want {
			t.Errorf("heavyAtomCount(%q): expected %d, got %d", tt.record, tt.want, got)
		}
	}
}

func TestBondSymbolCount(t *testing.T) {
	if got := bondSymbolCount("C=C-C#N"); got != 3 {
		t.Errorf("expected 3 bond symbols, got %d", got)
	}
	if got := bondSymbolCount("CCO"); got != 0 {
		t.Errorf("expected 0 bond symbols, got %d", got)
	}
}

func TestRingClosureCount(t *testing.T) {
	tests := []struct {
		record string
		want   int
	}{
		{"c1ccccc1", 1},
		{"C1CC1C2CC2", 2},
		{"C%12CCC%12", 1},
		{"CCO", 0},
	}

	for _, tt := range tests {
		if got := ringClosureCount(tt.record); got != tt.want {
			t.Errorf("ringClosureCount(%q): expected %d, got %d", tt.record, tt.want, got)
		}
	}
}

func TestBigramTanimotoDisjoint(t *testing.T) {
	if v := bigramTanimoto("AAAA", "BBBB"); v != 0 {
		t.Errorf("expected 0 for disjoint bigram sets, got %f", v)
	}
	if !math.IsNaN(bigramTanimoto("A", "BB")) {
		t.Error("expected NaN when one record has no bigram")
	}
}
