// Package dataset builds and persists the aggregate result of one
// comparison session.
package dataset

import (
	"context"
	"errors"
	"time"

	"github.com/haskel/molcmp/internal/compare"
	"github.com/haskel/molcmp/internal/histogram"
	"github.com/haskel/molcmp/internal/task"
)

// ErrNoResults is returned when a session finished without a single
// succeeded task.
var ErrNoResults = errors.New("no successful comparison results")

// Result is one succeeded comparison, tagged with its record pair.
type Result struct {
	TaskID  int64          `json:"task_id"`
	RecordA string         `json:"record_a,omitempty"`
	RecordB string         `json:"record_b,omitempty"`
	Values  compare.Values `json:"values"`
}

// Dataset is the aggregate of one session: the native result list in
// completion order plus one histogram per tracked feature.
type Dataset struct {
	SourceA    string
	SourceB    string
	Features   compare.FeatureMask
	StartedAt  time.Time
	FinishedAt time.Time

	Results    []Result
	histograms map[compare.FeatureID]*histogram.Histogram
}

// Histogram returns the histogram for a tracked feature, or nil.
func (d *Dataset) Histogram(feature compare.FeatureID) *histogram.Histogram {
	return d.histograms[feature]
}

// Rebin re-runs the binning pass for one feature over the native result
// list, using the histogram's current configuration.
func (d *Dataset) Rebin(feature compare.FeatureID) {
	h := d.histograms[feature]
	if h == nil {
		return
	}
	h.Rebin(d.samples(feature))
}

func (d *Dataset) samples(feature compare.FeatureID) []histogram.Sample {
	samples := make([]histogram.Sample, 0, len(d.Results))
	for _, r := range d.Results {
		v, ok := r.Values[feature]
		if !ok {
			continue
		}
		samples = append(samples, histogram.Sample{
			Value:   v,
			RecordA: r.RecordA,
			RecordB: r.RecordB,
			HasPair: r.RecordA != "" || r.RecordB != "",
		})
	}
	return samples
}

// Options configures aggregation.
type Options struct {
	SourceA     string
	SourceB     string
	StartedAt   time.Time
	DefaultBins int
}

// Aggregate folds the succeeded tasks into a dataset: the first result
// seeds each feature's extrema, the rest widen them, every raw result
// lands on the native list, and each feature is binned exactly once at
// the end. The context is rechecked between folds; cancellation mid-fold
// discards the partial dataset.
func Aggregate(ctx context.Context, succeeded []*task.Task, features compare.FeatureMask, opts Options) (*Dataset, error) {
	if len(succeeded) == 0 {
		return nil, ErrNoResults
	}

	d := &Dataset{
		SourceA:    opts.SourceA,
		SourceB:    opts.SourceB,
		Features:   features,
		StartedAt:  opts.StartedAt,
		histograms: make(map[compare.FeatureID]*histogram.Histogram, len(features)),
	}

	bins := opts.DefaultBins
	if bins < 1 {
		bins = DefaultBins
	}
	for _, f := range features {
		d.histograms[f] = histogram.New(bins)
	}

	for _, t := range succeeded {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		values := t.Values()
		for _, f := range features {
			d.histograms[f].Observe(values[f])
		}
		d.Results = append(d.Results, Result{
			TaskID:  t.ID,
			RecordA: t.RecordA,
			RecordB: t.RecordB,
			Values:  values,
		})
	}

	// Deferred binning: one O(bins x results) pass per feature, not one
	// per insertion.
	for _, f := range features {
		d.Rebin(f)
	}

	d.FinishedAt = time.Now()
	return d, nil
}

// DefaultBins is the histogram bin count used when none is configured.
const DefaultBins = 10
