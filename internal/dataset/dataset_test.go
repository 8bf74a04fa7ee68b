package dataset

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/haskel/molcmp/internal/compare"
	"github.com/haskel/molcmp/internal/task"
)

type fixedComparator struct {
	values compare.Values
}

func (c *fixedComparator) Compare(_, _ string, mask compare.FeatureMask) (compare.Values, error) {
	out := make(compare.Values, len(mask))
	for _, id := range mask {
		out[id] = c.values[id]
	}
	return out, nil
}

func succeededTasks(t *testing.T, values []float64) []*task.Task {
	t.Helper()

	mask := compare.FeatureMask{compare.FeatureLengthDiff}
	tasks := make([]*task.Task, len(values))
	for i, v := range values {
		tk := task.New(int64(i+1), "recA", "recB", mask)
		tk.Run(context.Background(), &fixedComparator{values: compare.Values{compare.FeatureLengthDiff: v}})
		if tk.State() != task.StateSucceeded {
			t.Fatalf("fixture task %d did not succeed: %s", i, tk.State())
		}
		tasks[i] = tk
	}
	return tasks
}

func TestAggregate(t *testing.T) {
	tasks := succeededTasks(t, []float64{1, 2, 3, 4})
	features := compare.FeatureMask{compare.FeatureLengthDiff}

	started := time.Now().Add(-time.Second)
	d, err := Aggregate(context.Background(), tasks, features, Options{
		SourceA:   "a.smi",
		SourceB:   "b.smi",
		StartedAt: started,
	})
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	if len(d.Results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(d.Results))
	}
	if d.Results[0].TaskID != 1 || d.Results[3].TaskID != 4 {
		t.Errorf("results must keep fold order: %v", d.Results)
	}
	if d.SourceA != "a.smi" || d.SourceB != "b.smi" {
		t.Errorf("unexpected sources: %q, %q", d.SourceA, d.SourceB)
	}
	if !d.StartedAt.Equal(started) || d.FinishedAt.IsZero() {
		t.Error("timestamps not recorded")
	}

	h := d.Histogram(compare.FeatureLengthDiff)
	if h == nil {
		t.Fatal("missing histogram for tracked feature")
	}
	if !h.Binned() {
		t.Error("aggregation must leave the histogram binned")
	}
	if h.Min() != 1 || h.Max() != 4 {
		t.Errorf("unexpected extrema: %f, %f", h.Min(), h.Max())
	}
	if h.Total() != 4 {
		t.Errorf("expected total 4, got %d", h.Total())
	}
	if h.Bins() != DefaultBins {
		t.Errorf("expected default bin count %d, got %d", DefaultBins, h.Bins())
	}
}

func TestAggregateNoResults(t *testing.T) {
	_, err := Aggregate(context.Background(), nil, compare.AllFeatures, Options{})
	if !errors.Is(err, ErrNoResults) {
		t.Errorf("expected ErrNoResults, got %v", err)
	}
}

func TestAggregateCancelled(t *testing.T) {
	tasks := succeededTasks(t, []float64{1, 2, 3})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, err := Aggregate(ctx, tasks, compare.FeatureMask{compare.FeatureLengthDiff}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if d != nil {
		t.Error("cancelled aggregation must discard the partial dataset")
	}
}

func TestAggregateUntrackedFeatureIgnored(t *testing.T) {
	tasks := succeededTasks(t, []float64{1, 2})

	d, err := Aggregate(context.Background(), tasks, compare.FeatureMask{compare.FeatureLengthDiff}, Options{})
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}
	if d.Histogram(compare.FeatureTanimoto) != nil {
		t.Error("expected nil histogram for untracked feature")
	}
}

func TestRebinAfterReconfigure(t *testing.T) {
	tasks := succeededTasks(t, []float64{0, 1, 2, 3, 4, 5})

	d, err := Aggregate(context.Background(), tasks, compare.FeatureMask{compare.FeatureLengthDiff}, Options{DefaultBins: 3})
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	h := d.Histogram(compare.FeatureLengthDiff)
	h.SetBins(2)
	if h.Binned() {
		t.Error("bin change must invalidate the binned state")
	}

	d.Rebin(compare.FeatureLengthDiff)
	if !h.Binned() {
		t.Error("rebin must restore the binned state")
	}
	counts := h.Counts()
	if len(counts) != 2 {
		t.Fatalf("expected 2 bins, got %d", len(counts))
	}
	if counts[0]+counts[1] != 6 {
		t.Errorf("counts must cover all results: %v", counts)
	}
}

func TestAggregateNaNValues(t *testing.T) {
	mask := compare.FeatureMask{compare.FeatureTanimoto}
	tk := task.New(1, "", "CCO", mask)
	tk.Run(context.Background(), &fixedComparator{values: compare.Values{compare.FeatureTanimoto: math.NaN()}})

	d, err := Aggregate(context.Background(), []*task.Task{tk}, mask, Options{})
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	h := d.Histogram(compare.FeatureTanimoto)
	if h.InvalidCount() != 1 {
		t.Errorf("expected the NaN value counted as invalid, got %d", h.InvalidCount())
	}
	if h.Total() != 1 {
		t.Errorf("expected total 1, got %d", h.Total())
	}
}
