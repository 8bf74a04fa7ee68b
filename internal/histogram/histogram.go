// Package histogram implements per-feature frequency binning over a
// result set that may contain missing values.
package histogram

import (
	"fmt"
	"math"
	"sort"
)

// Pair is the originating record pair of a binned value.
type Pair struct {
	RecordA string
	RecordB string
}

// Sample is one scalar value to bin, optionally tagged with the record
// pair it came from. Samples without a pair still count; they only skip
// the per-bin sample list (loaded datasets may have samples stripped).
type Sample struct {
	Value   float64
	RecordA string
	RecordB string
	HasPair bool
}

// Histogram bins a stream of scalar values into equal- or custom-width
// bins and answers display queries in absolute or relative frequency
// terms.
//
// Configuration setters (bin count, border overrides, explicit edges)
// invalidate the binned state until the next Rebin pass. Frequency
// display bounds are presentation-only and never trigger re-binning.
type Histogram struct {
	bins    int
	edges   []float64
	counts  []int
	samples [][]Pair

	minObserved float64
	maxObserved float64
	observed    bool

	total   int
	invalid int
	average float64
	maxBin  int

	relative      bool
	lowerBorder   float64
	upperBorder   float64
	explicitEdges []float64

	// Display clamp, stored in absolute count units so toggling the
	// relative mode is a pure presentation change. NaN means unset.
	lowerBound float64
	upperBound float64

	binned bool
}

// New creates an unbinned histogram with the given bin count.
func New(bins int) *Histogram {
	if bins < 1 {
		bins = 1
	}
	return &Histogram{
		bins:        bins,
		minObserved: math.NaN(),
		maxObserved: math.NaN(),
		lowerBorder: math.NaN(),
		upperBorder: math.NaN(),
		lowerBound:  math.NaN(),
		upperBound:  math.NaN(),
	}
}

// Observe widens the running extrema with one value. NaN is ignored.
func (h *Histogram) Observe(v float64) {
	if math.IsNaN(v) {
		return
	}
	if !h.observed {
		h.minObserved = v
		h.maxObserved = v
		h.observed = true
		return
	}
	if v < h.minObserved {
		h.minObserved = v
	}
	if v > h.maxObserved {
		h.maxObserved = v
	}
}

// Bins returns the configured bin count.
func (h *Histogram) Bins() int { return h.bins }

// SetBins changes the bin count and invalidates the binned state.
func (h *Histogram) SetBins(n int) {
	if n < 1 {
		n = 1
	}
	h.bins = n
	h.explicitEdges = nil
	h.binned = false
}

// Borders returns the configured range overrides. NaN means "use the
// observed extremum".
func (h *Histogram) Borders() (lower, upper float64) {
	return h.lowerBorder, h.upperBorder
}

// SetBorders overrides the auto range and invalidates the binned state.
// NaN clears the corresponding side.
func (h *Histogram) SetBorders(lower, upper float64) {
	h.lowerBorder = lower
	h.upperBorder = upper
	h.binned = false
}

// SetEdges installs explicit custom-width bin edges. Edges must be
// strictly increasing with at least two entries.
func (h *Histogram) SetEdges(edges []float64) error {
	if len(edges) < 2 {
		return fmt.Errorf("need at least two edges, got %d", len(edges))
	}
	if !sort.Float64sAreSorted(edges) {
		return fmt.Errorf("edges must be increasing")
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] == edges[i-1] {
			return fmt.Errorf("edges must be strictly increasing")
		}
	}
	h.explicitEdges = append([]float64(nil), edges...)
	h.bins = len(edges) - 1
	h.binned = false
	return nil
}

// ExplicitEdges returns the installed custom edges, or nil.
func (h *Histogram) ExplicitEdges() []float64 {
	if h.explicitEdges == nil {
		return nil
	}
	return append([]float64(nil), h.explicitEdges...)
}

// Binned reports whether counts reflect the current configuration.
func (h *Histogram) Binned() bool { return h.binned }

// Rebin runs the full binning pass over all samples. Idempotent for
// identical samples and configuration. Both frequency display bounds are
// reset; a caller that wants to keep a zoom window must re-apply it
// afterwards.
func (h *Histogram) Rebin(samples []Sample) {
	h.computeEdges()

	h.counts = make([]int, h.bins)
	h.samples = make([][]Pair, h.bins)
	h.invalid = 0
	h.average = 0
	h.total = len(samples)

	sum := 0.0
	for _, s := range samples {
		if math.IsNaN(s.Value) {
			h.invalid++
			continue
		}
		sum += s.Value

		bin := h.binOf(s.Value)
		h.counts[bin]++
		if s.HasPair {
			h.samples[bin] = append(h.samples[bin], Pair{RecordA: s.RecordA, RecordB: s.RecordB})
		}
	}

	if valid := h.total - h.invalid; valid > 0 {
		h.average = sum / float64(valid)
	}

	h.maxBin = 0
	for _, c := range h.counts {
		if c > h.maxBin {
			h.maxBin = c
		}
	}

	h.lowerBound = math.NaN()
	h.upperBound = math.NaN()
	h.binned = true
}

// computeEdges derives the working bin edges from the configured range
// overrides or the observed extrema.
func (h *Histogram) computeEdges() {
	if h.explicitEdges != nil {
		h.edges = append([]float64(nil), h.explicitEdges...)
		h.bins = len(h.edges) - 1
		return
	}

	lower := h.lowerBorder
	if math.IsNaN(lower) {
		lower = h.minObserved
	}
	upper := h.upperBorder
	if math.IsNaN(upper) {
		upper = h.maxObserved
	}
	if math.IsNaN(lower) || math.IsNaN(upper) {
		lower, upper = 0, 0
	}
	if upper < lower {
		lower, upper = upper, lower
	}

	binSize := (upper - lower) / float64(h.bins)
	if binSize == 0 {
		// Zero span collapses to a single bin.
		h.bins = 1
		h.edges = []float64{lower, upper}
		return
	}

	edges := make([]float64, h.bins+1)
	for i := 0; i < h.bins; i++ {
		edges[i] = lower + binSize*float64(i)
	}
	// The last edge is forced exactly to the upper bound so floating
	// point drift cannot push the top value out of range.
	edges[h.bins] = upper
	h.edges = edges
}

// binOf assigns a valid value to its bin: value belongs to bin i iff
// edges[i] <= value < edges[i+1]; a value exactly on the topmost edge
// belongs to the last bin. Values outside an overridden range clamp to
// the boundary bins so counts always account for every valid value.
func (h *Histogram) binOf(v float64) int {
	for i := 0; i < h.bins; i++ {
		if h.edges[i] <= v && v < h.edges[i+1] {
			return i
		}
	}
	if v >= h.edges[h.bins] {
		return h.bins - 1
	}
	return 0
}

// Edges returns the current bin edges. Valid after Rebin.
func (h *Histogram) Edges() []float64 {
	return append([]float64(nil), h.edges...)
}

// Counts returns the absolute per-bin counts.
func (h *Histogram) Counts() []int {
	return append([]int(nil), h.counts...)
}

// Samples returns the sample pairs recorded for one bin. An empty list
// does not imply a zero count.
func (h *Histogram) Samples(bin int) []Pair {
	if bin < 0 || bin >= len(h.samples) {
		return nil
	}
	return append([]Pair(nil), h.samples[bin]...)
}

// Relative reports whether frequencies are expressed as fractions of
// the valid total.
func (h *Histogram) Relative() bool { return h.relative }

// SetRelative toggles the frequency display mode. Pure presentation
// change; no re-binning.
func (h *Histogram) SetRelative(relative bool) {
	h.relative = relative
}

// Frequency returns one bin's frequency in the current display mode.
func (h *Histogram) Frequency(bin int) float64 {
	if bin < 0 || bin >= len(h.counts) {
		return 0
	}
	return h.toDisplay(float64(h.counts[bin]))
}

// MaxFrequency returns the largest bin frequency in the current display
// mode, for chart scaling.
func (h *Histogram) MaxFrequency() float64 {
	return h.toDisplay(float64(h.maxBin))
}

// FrequencyBounds returns the display clamp in the current display
// mode. NaN means the full range.
func (h *Histogram) FrequencyBounds() (lower, upper float64) {
	return h.toDisplay(h.lowerBound), h.toDisplay(h.upperBound)
}

// SetLowerFrequencyBound sets the lower display clamp in the current
// display mode. NaN is a no-op; an inverted pair is swapped, never
// rejected.
func (h *Histogram) SetLowerFrequencyBound(v float64) {
	if math.IsNaN(v) {
		return
	}
	h.lowerBound = h.fromDisplay(v)
	h.normalizeBounds()
}

// SetUpperFrequencyBound sets the upper display clamp in the current
// display mode. NaN is a no-op; an inverted pair is swapped.
func (h *Histogram) SetUpperFrequencyBound(v float64) {
	if math.IsNaN(v) {
		return
	}
	h.upperBound = h.fromDisplay(v)
	h.normalizeBounds()
}

func (h *Histogram) normalizeBounds() {
	if math.IsNaN(h.lowerBound) || math.IsNaN(h.upperBound) {
		return
	}
	if h.lowerBound > h.upperBound {
		h.lowerBound, h.upperBound = h.upperBound, h.lowerBound
	}
}

func (h *Histogram) toDisplay(abs float64) float64 {
	if !h.relative {
		return abs
	}
	valid := h.total - h.invalid
	if valid == 0 {
		return abs
	}
	return abs / float64(valid)
}

func (h *Histogram) fromDisplay(v float64) float64 {
	if !h.relative {
		return v
	}
	valid := h.total - h.invalid
	if valid == 0 {
		return v
	}
	return v * float64(valid)
}

// Min returns the smallest valid value observed so far.
func (h *Histogram) Min() float64 { return h.minObserved }

// Max returns the largest valid value observed so far.
func (h *Histogram) Max() float64 { return h.maxObserved }

// Average returns the mean over valid values from the last Rebin.
func (h *Histogram) Average() float64 { return h.average }

// InvalidCount returns the number of NaN values from the last Rebin.
func (h *Histogram) InvalidCount() int { return h.invalid }

// Total returns the number of results considered by the last Rebin.
func (h *Histogram) Total() int { return h.total }
