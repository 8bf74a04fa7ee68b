package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/haskel/molcmp/internal/compare"
	"github.com/haskel/molcmp/internal/histogram"
)

const currentVersion = 1

// document is the persisted dataset shape. Version gates forward
// compatibility; feature configurations are stored fully so every
// histogram can be reconstructed bit-for-bit.
type document struct {
	Version    int             `json:"version"`
	UpdatedAt  time.Time       `json:"updated_at"`
	SourceA    string          `json:"source_a"`
	SourceB    string          `json:"source_b"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Features   []featureConfig `json:"features"`
	Results    []Result        `json:"results"`
}

type featureConfig struct {
	Feature     compare.FeatureID `json:"feature"`
	Bins        int               `json:"bins"`
	LowerBorder *float64          `json:"lower_border,omitempty"`
	UpperBorder *float64          `json:"upper_border,omitempty"`
	Edges       []float64         `json:"edges,omitempty"`
	Relative    bool              `json:"relative"`
}

// SaveOptions controls serialization.
type SaveOptions struct {
	// StripRecords drops the raw record strings from the persisted
	// results. Histogram counts stay reconstructible; per-bin sample
	// lists come back empty.
	StripRecords bool
}

// Save writes the dataset to path as versioned JSON, atomically via a
// temp file rename.
func Save(d *Dataset, path string, opts SaveOptions) error {
	doc := document{
		Version:    currentVersion,
		UpdatedAt:  time.Now(),
		SourceA:    d.SourceA,
		SourceB:    d.SourceB,
		StartedAt:  d.StartedAt,
		FinishedAt: d.FinishedAt,
	}

	for _, f := range d.Features {
		h := d.Histogram(f)
		cfg := featureConfig{
			Feature:  f,
			Bins:     h.Bins(),
			Edges:    h.ExplicitEdges(),
			Relative: h.Relative(),
		}
		lower, upper := h.Borders()
		if !math.IsNaN(lower) {
			cfg.LowerBorder = &lower
		}
		if !math.IsNaN(upper) {
			cfg.UpperBorder = &upper
		}
		doc.Features = append(doc.Features, cfg)
	}

	doc.Results = d.Results
	if opts.StripRecords {
		doc.Results = make([]Result, len(d.Results))
		for i, r := range d.Results {
			doc.Results[i] = Result{TaskID: r.TaskID, Values: r.Values}
		}
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&doc); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}

// Load reads a persisted dataset and rebuilds every histogram from the
// raw results and the stored configuration.
func Load(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var doc document
	if err := json.NewDecoder(file).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	if doc.Version > currentVersion {
		return nil, fmt.Errorf("dataset version %d is newer than supported %d", doc.Version, currentVersion)
	}

	d := &Dataset{
		SourceA:    doc.SourceA,
		SourceB:    doc.SourceB,
		StartedAt:  doc.StartedAt,
		FinishedAt: doc.FinishedAt,
		Results:    doc.Results,
		histograms: make(map[compare.FeatureID]*histogram.Histogram, len(doc.Features)),
	}

	for _, cfg := range doc.Features {
		d.Features = append(d.Features, cfg.Feature)

		h := histogram.New(cfg.Bins)
		if cfg.Edges != nil {
			if err := h.SetEdges(cfg.Edges); err != nil {
				return nil, fmt.Errorf("feature %s: %w", cfg.Feature, err)
			}
		}
		lower, upper := math.NaN(), math.NaN()
		if cfg.LowerBorder != nil {
			lower = *cfg.LowerBorder
		}
		if cfg.UpperBorder != nil {
			upper = *cfg.UpperBorder
		}
		if cfg.LowerBorder != nil || cfg.UpperBorder != nil {
			h.SetBorders(lower, upper)
		}
		h.SetRelative(cfg.Relative)

		for _, r := range d.Results {
			if v, ok := r.Values[cfg.Feature]; ok {
				h.Observe(v)
			}
		}
		d.histograms[cfg.Feature] = h
		d.Rebin(cfg.Feature)
	}

	return d, nil
}
