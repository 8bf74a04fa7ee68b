package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/haskel/molcmp/internal/compare"
	"github.com/haskel/molcmp/internal/dataset"
)

var histCmd = &cobra.Command{
	Use:   "hist <dataset>",
	Short: "Inspect and re-bin a saved dataset histogram",
	Long: `Load a saved dataset and print the histogram of one feature.

Changing the bin count, the border overrides, or the explicit edges
re-runs the binning pass over the raw results. The relative flag only
changes how frequencies are displayed.`,
	Example: `  molcmp hist results.json --feature tanimoto
  molcmp hist results.json --feature tanimoto --bins 20 --relative
  molcmp hist results.json --feature atom_count_diff --lower 0 --upper 10
  molcmp hist results.json --feature tanimoto --edges 0,0.5,0.8,1.0`,
	Args: cobra.ExactArgs(1),
	RunE: runHist,
}

var (
	histFeature  string
	histBins     int
	histLower    float64
	histUpper    float64
	histRelative bool
	histEdges    []float64
)

func init() {
	registerHistFlags()
	rootCmd.AddCommand(histCmd)
}

func registerHistFlags() {
	histCmd.Flags().StringVarP(&histFeature, "feature", "f", "", "feature to inspect (default: first in dataset)")
	histCmd.Flags().IntVar(&histBins, "bins", 0, "re-bin with this bin count")
	histCmd.Flags().Float64Var(&histLower, "lower", math.NaN(), "lower bin border override")
	histCmd.Flags().Float64Var(&histUpper, "upper", math.NaN(), "upper bin border override")
	histCmd.Flags().BoolVar(&histRelative, "relative", false, "show relative frequencies")
	histCmd.Flags().Float64SliceVar(&histEdges, "edges", nil, "explicit bin edges")
}

func runHist(cmd *cobra.Command, args []string) error {
	ds, err := dataset.Load(args[0])
	if err != nil {
		return err
	}
	if len(ds.Features) == 0 {
		return fmt.Errorf("dataset has no features")
	}

	feature := compare.FeatureID(histFeature)
	if histFeature == "" {
		feature = ds.Features[0]
	}
	h := ds.Histogram(feature)
	if h == nil {
		return fmt.Errorf("feature %q not in dataset (has: %v)", feature, ds.Features)
	}

	flags := cmd.Flags()
	rebin := false
	if flags.Changed("bins") {
		h.SetBins(histBins)
		rebin = true
	}
	if flags.Changed("edges") {
		if err := h.SetEdges(histEdges); err != nil {
			return err
		}
		rebin = true
	}
	if flags.Changed("lower") || flags.Changed("upper") {
		lower, upper := h.Borders()
		if flags.Changed("lower") {
			lower = histLower
		}
		if flags.Changed("upper") {
			upper = histUpper
		}
		h.SetBorders(lower, upper)
		rebin = true
	}
	if rebin {
		ds.Rebin(feature)
	}
	h.SetRelative(histRelative)

	fmt.Println(renderHistogram(feature, h))
	return nil
}
