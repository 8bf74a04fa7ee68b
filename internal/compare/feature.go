package compare

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// FeatureID identifies a scalar metric computed for a record pair.
type FeatureID string

const (
	// FeatureTanimoto is the bigram-set Tanimoto similarity of the two records.
	FeatureTanimoto FeatureID = "tanimoto"

	// FeatureAtomCountDiff is the absolute heavy-atom count difference.
	FeatureAtomCountDiff FeatureID = "atom_count_diff"

	// FeatureBondCountDiff is the absolute explicit-bond-symbol count difference.
	FeatureBondCountDiff FeatureID = "bond_count_diff"

	// FeatureRingClosureDiff is the absolute ring-closure count difference.
	FeatureRingClosureDiff FeatureID = "ring_closure_diff"

	// FeatureLengthDiff is the absolute record length difference.
	FeatureLengthDiff FeatureID = "length_diff"
)

// AllFeatures lists every built-in feature in display order.
var AllFeatures = []FeatureID{
	FeatureTanimoto,
	FeatureAtomCountDiff,
	FeatureBondCountDiff,
	FeatureRingClosureDiff,
	FeatureLengthDiff,
}

// FeatureMask is an ordered set of features selected for a comparison run.
type FeatureMask []FeatureID

// Contains reports whether the mask selects the given feature.
func (m FeatureMask) Contains(id FeatureID) bool {
	for _, f := range m {
		if f == id {
			return true
		}
	}
	return false
}

// ParseFeatures converts feature names into a validated mask.
// Duplicates are dropped, order of first appearance is kept.
func ParseFeatures(names []string) (FeatureMask, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one feature must be selected")
	}

	var mask FeatureMask
	for _, name := range names {
		id := FeatureID(strings.TrimSpace(name))
		if !FeatureMask(AllFeatures).Contains(id) {
			return nil, fmt.Errorf("unknown feature %q", name)
		}
		if !mask.Contains(id) {
			mask = append(mask, id)
		}
	}
	return mask, nil
}

// Values maps every computed feature to its scalar result.
// A feature the comparator could not compute for a pair is NaN.
type Values map[FeatureID]float64

// MarshalJSON encodes NaN values as null; JSON has no NaN literal.
func (v Values) MarshalJSON() ([]byte, error) {
	out := make(map[FeatureID]*float64, len(v))
	for id, val := range v {
		if math.IsNaN(val) {
			out[id] = nil
			continue
		}
		f := val
		out[id] = &f
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores null values as NaN.
func (v *Values) UnmarshalJSON(data []byte) error {
	var raw map[FeatureID]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Values, len(raw))
	for id, val := range raw {
		if val == nil {
			out[id] = math.NaN()
		} else {
			out[id] = *val
		}
	}
	*v = out
	return nil
}

// Comparator computes feature values for one record pair.
//
// Implementations must be safe for concurrent use from multiple workers
// and must report an uncomputable feature as NaN rather than an error.
// A returned error fails the whole pair.
type Comparator interface {
	Compare(recordA, recordB string, mask FeatureMask) (Values, error)
}
