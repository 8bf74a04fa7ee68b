package histogram

import (
	"math"
	"testing"
)

func values(vs ...float64) []Sample {
	samples := make([]Sample, len(vs))
	for i, v := range vs {
		samples[i] = Sample{Value: v}
	}
	return samples
}

func observeAll(h *Histogram, samples []Sample) {
	for _, s := range samples {
		h.Observe(s.Value)
	}
}

func TestRebinEqualWidth(t *testing.T) {
	h := New(5)
	samples := values(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	observeAll(h, samples)
	h.Rebin(samples)

	counts := h.Counts()
	if len(counts) != 5 {
		t.Fatalf("expected 5 bins, got %d", len(counts))
	}

	sum := 0
	for _, c := range counts {
		sum += c
	}
	if sum != len(samples) {
		t.Errorf("counts must partition the samples: sum %d, total %d", sum, len(samples))
	}

	// 10 sits exactly on the top edge and goes to the last bin.
	if counts[4] != 3 {
		t.Errorf("expected last bin [8, 10] to hold 8, 9, 10: got %d", counts[4])
	}
	if h.Min() != 0 || h.Max() != 10 {
		t.Errorf("unexpected extrema: %f, %f", h.Min(), h.Max())
	}
	if h.Average() != 5 {
		t.Errorf("expected average 5, got %f", h.Average())
	}
	if !h.Binned() {
		t.Error("expected binned state after rebin")
	}
}

func TestHalfOpenBins(t *testing.T) {
	h := New(2)
	if err := h.SetEdges([]float64{1, 2, 3}); err != nil {
		t.Fatalf("set edges failed: %v", err)
	}

	samples := values(1.0, 1.5, 2.0, 2.5, 3.0)
	observeAll(h, samples)
	h.Rebin(samples)

	counts := h.Counts()
	// 2.0 lands in [2, 3], not [1, 2); 3.0 closes the final bin.
	if counts[0] != 2 {
		t.Errorf("expected bin [1, 2) to hold 1.0 and 1.5: got %d", counts[0])
	}
	if counts[1] != 3 {
		t.Errorf("expected bin [2, 3] to hold 2.0, 2.5 and 3.0: got %d", counts[1])
	}
}

func TestDerivedEdgesTwoBins(t *testing.T) {
	h := New(2)
	samples := values(1, 2, 3)
	observeAll(h, samples)
	h.Rebin(samples)

	edges := h.Edges()
	if len(edges) != 3 || edges[0] != 1 || edges[1] != 2 || edges[2] != 3 {
		t.Fatalf("expected edges [1 2 3], got %v", edges)
	}
	counts := h.Counts()
	// 2.0 goes to the upper bin; 3.0 closes the final bin.
	if counts[0] != 1 || counts[1] != 2 {
		t.Errorf("expected counts [1 2], got %v", counts)
	}
	if h.InvalidCount() != 0 {
		t.Errorf("expected no invalid values, got %d", h.InvalidCount())
	}
}

func TestInteriorEdgeCountedOnce(t *testing.T) {
	h := New(3)
	if err := h.SetEdges([]float64{0, 1, 2, 3}); err != nil {
		t.Fatalf("set edges failed: %v", err)
	}

	// Every value sits exactly on an interior edge.
	samples := values(1, 2)
	observeAll(h, samples)
	h.Rebin(samples)

	counts := h.Counts()
	sum := 0
	for _, c := range counts {
		sum += c
	}
	if sum != 2 {
		t.Fatalf("interior-edge values must be counted exactly once: %v", counts)
	}
	// Each belongs to the bin it opens, not the one it closes.
	if counts[0] != 0 || counts[1] != 1 || counts[2] != 1 {
		t.Errorf("expected counts [0 1 1], got %v", counts)
	}
}

func TestRebinIdempotent(t *testing.T) {
	h := New(4)
	samples := values(1, 2, 2, 3, 5, 8)
	observeAll(h, samples)

	h.Rebin(samples)
	first := h.Counts()
	h.Rebin(samples)
	second := h.Counts()

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("rebin not idempotent: %v vs %v", first, second)
		}
	}
}

func TestInvalidValues(t *testing.T) {
	h := New(2)
	samples := values(1, math.NaN(), 3, math.NaN())
	observeAll(h, samples)
	h.Rebin(samples)

	if h.InvalidCount() != 2 {
		t.Errorf("expected 2 invalid, got %d", h.InvalidCount())
	}
	if h.Total() != 4 {
		t.Errorf("expected total 4, got %d", h.Total())
	}
	if h.Average() != 2 {
		t.Errorf("expected average over valid values only, got %f", h.Average())
	}

	sum := 0
	for _, c := range h.Counts() {
		sum += c
	}
	if sum+h.InvalidCount() != h.Total() {
		t.Errorf("counts plus invalid must equal total: %d + %d != %d", sum, h.InvalidCount(), h.Total())
	}
}

func TestZeroSpanCollapses(t *testing.T) {
	h := New(10)
	samples := values(4.2, 4.2, 4.2)
	observeAll(h, samples)
	h.Rebin(samples)

	counts := h.Counts()
	if len(counts) != 1 {
		t.Fatalf("expected a single collapsed bin, got %d", len(counts))
	}
	if counts[0] != 3 {
		t.Errorf("expected all 3 values in the collapsed bin, got %d", counts[0])
	}
}

func TestBorderOverridesClamp(t *testing.T) {
	h := New(4)
	samples := values(0, 1, 2, 3, 4, 5, 6, 7, 8)
	observeAll(h, samples)

	h.SetBorders(2, 6)
	if h.Binned() {
		t.Error("border change must invalidate binned state")
	}
	h.Rebin(samples)

	edges := h.Edges()
	if edges[0] != 2 || edges[len(edges)-1] != 6 {
		t.Errorf("expected edges spanning [2, 6], got %v", edges)
	}

	sum := 0
	for _, c := range h.Counts() {
		sum += c
	}
	// Out-of-range values clamp into the boundary bins.
	if sum != len(samples) {
		t.Errorf("all valid values must be counted: sum %d, total %d", sum, len(samples))
	}
	counts := h.Counts()
	if counts[0] < 3 {
		t.Errorf("expected 0, 1 and 2 clamped into the first bin: %v", counts)
	}
}

func TestInvertedBordersSwapped(t *testing.T) {
	h := New(2)
	samples := values(1, 2, 3)
	observeAll(h, samples)

	h.SetBorders(5, 0)
	h.Rebin(samples)

	edges := h.Edges()
	if edges[0] != 0 || edges[len(edges)-1] != 5 {
		t.Errorf("expected swapped range [0, 5], got %v", edges)
	}
}

func TestSetEdgesValidation(t *testing.T) {
	h := New(2)
	if err := h.SetEdges([]float64{1}); err == nil {
		t.Error("expected error for a single edge")
	}
	if err := h.SetEdges([]float64{1, 1, 2}); err == nil {
		t.Error("expected error for duplicate edges")
	}
	if err := h.SetEdges([]float64{3, 1}); err == nil {
		t.Error("expected error for decreasing edges")
	}
	if err := h.SetEdges([]float64{0, 1, 5}); err != nil {
		t.Errorf("unexpected error for valid edges: %v", err)
	}
	if h.Bins() != 2 {
		t.Errorf("expected bin count derived from edges, got %d", h.Bins())
	}
}

func TestRelativeFrequencies(t *testing.T) {
	h := New(2)
	samples := values(1, 1, 1, 3)
	observeAll(h, samples)
	h.Rebin(samples)

	if h.Frequency(0) != 3 {
		t.Fatalf("expected absolute count 3, got %f", h.Frequency(0))
	}

	h.SetRelative(true)
	if h.Frequency(0) != 0.75 {
		t.Errorf("expected relative frequency 0.75, got %f", h.Frequency(0))
	}
	if h.MaxFrequency() != 0.75 {
		t.Errorf("expected max relative frequency 0.75, got %f", h.MaxFrequency())
	}

	// Toggling back must restore the absolute view without rebinning.
	h.SetRelative(false)
	if h.Frequency(0) != 3 {
		t.Errorf("expected absolute count 3 after toggle, got %f", h.Frequency(0))
	}
}

func TestFrequencyBoundsFollowDisplayMode(t *testing.T) {
	h := New(2)
	samples := values(1, 1, 3, 3)
	observeAll(h, samples)
	h.Rebin(samples)

	h.SetUpperFrequencyBound(2)

	h.SetRelative(true)
	_, upper := h.FrequencyBounds()
	if upper != 0.5 {
		t.Errorf("expected bound 0.5 in relative mode, got %f", upper)
	}

	h.SetRelative(false)
	_, upper = h.FrequencyBounds()
	if upper != 2 {
		t.Errorf("expected bound 2 in absolute mode, got %f", upper)
	}
}

func TestFrequencyBoundsResetOnRebin(t *testing.T) {
	h := New(2)
	samples := values(1, 2, 3)
	observeAll(h, samples)
	h.Rebin(samples)

	h.SetLowerFrequencyBound(1)
	h.SetUpperFrequencyBound(2)

	h.Rebin(samples)
	lower, upper := h.FrequencyBounds()
	if !math.IsNaN(lower) || !math.IsNaN(upper) {
		t.Errorf("expected bounds reset to NaN after rebin, got %f, %f", lower, upper)
	}
}

func TestFrequencyBoundsNaNIgnoredAndInvertedSwapped(t *testing.T) {
	h := New(2)
	samples := values(1, 2, 3)
	observeAll(h, samples)
	h.Rebin(samples)

	h.SetLowerFrequencyBound(math.NaN())
	lower, _ := h.FrequencyBounds()
	if !math.IsNaN(lower) {
		t.Errorf("NaN must leave the bound unset, got %f", lower)
	}

	h.SetLowerFrequencyBound(5)
	h.SetUpperFrequencyBound(1)
	lower, upper := h.FrequencyBounds()
	if lower != 1 || upper != 5 {
		t.Errorf("expected inverted bounds swapped to [1, 5], got [%f, %f]", lower, upper)
	}
}

func TestSamplesPerBin(t *testing.T) {
	h := New(2)
	samples := []Sample{
		{Value: 1, RecordA: "a1", RecordB: "b1", HasPair: true},
		{Value: 1.2, RecordA: "a2", RecordB: "b2", HasPair: true},
		{Value: 3, HasPair: false},
	}
	observeAll(h, samples)
	h.Rebin(samples)

	first := h.Samples(0)
	if len(first) != 2 {
		t.Fatalf("expected 2 sample pairs in the first bin, got %d", len(first))
	}
	if first[0].RecordA != "a1" || first[1].RecordB != "b2" {
		t.Errorf("unexpected pairs: %v", first)
	}

	// The stripped sample still counts but records no pair.
	if h.Counts()[1] != 1 {
		t.Errorf("expected 1 count in the second bin, got %d", h.Counts()[1])
	}
	if len(h.Samples(1)) != 0 {
		t.Errorf("expected no pairs in the second bin, got %v", h.Samples(1))
	}

	if h.Samples(99) != nil {
		t.Error("out-of-range bin must return nil")
	}
}

func TestObserveIgnoresNaN(t *testing.T) {
	h := New(2)
	h.Observe(math.NaN())
	if !math.IsNaN(h.Min()) || !math.IsNaN(h.Max()) {
		t.Error("NaN must not move the extrema")
	}

	h.Observe(2)
	h.Observe(-1)
	if h.Min() != -1 || h.Max() != 2 {
		t.Errorf("unexpected extrema: %f, %f", h.Min(), h.Max())
	}
}
