package compare

import (
	"fmt"
	"math"
)

// Descriptor is the built-in comparator. It derives cheap string-level
// molecular descriptors from SMILES-like records, without an external
// chemistry toolkit. Stateless and safe for concurrent use.
type Descriptor struct{}

// NewDescriptor creates the built-in descriptor comparator.
func NewDescriptor() *Descriptor {
	return &Descriptor{}
}

// Compare computes the requested features for one record pair.
func (d *Descriptor) Compare(recordA, recordB string, mask FeatureMask) (Values, error) {
	if len(mask) == 0 {
		return nil, fmt.Errorf("empty feature mask")
	}

	values := make(Values, len(mask))
	for _, id := range mask {
		switch id {
		case FeatureTanimoto:
			values[id] = bigramTanimoto(recordA, recordB)
		case FeatureAtomCountDiff:
			values[id] = countDiff(recordA, recordB, heavyAtomCount)
		case FeatureBondCountDiff:
			values[id] = countDiff(recordA, recordB, bondSymbolCount)
		case FeatureRingClosureDiff:
			values[id] = countDiff(recordA, recordB, ringClosureCount)
		case FeatureLengthDiff:
			values[id] = math.Abs(float64(len(recordA) - len(recordB)))
		default:
			return nil, fmt.Errorf("unknown feature %q", id)
		}
	}
	return values, nil
}

// bigramTanimoto computes |A∩B| / |A∪B| over the character bigram sets
// of both records. NaN when either record has no bigram.
func bigramTanimoto(a, b string) float64 {
	setA := bigrams(a)
	setB := bigrams(b)
	if len(setA) == 0 || len(setB) == 0 {
		return math.NaN()
	}

	intersection := 0
	for g := range setA {
		if setB[g] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func bigrams(s string) map[string]bool {
	set := make(map[string]bool)
	for i := 0; i+2 <= len(s); i++ {
		set[s[i:i+2]] = true
	}
	return set
}

func countDiff(a, b string, count func(string) int) float64 {
	if a == "" || b == "" {
		return math.NaN()
	}
	return math.Abs(float64(count(a) - count(b)))
}

// heavyAtomCount counts element symbols in a SMILES-ish record.
// Two-letter organic-subset halogens (Cl, Br) count once; aromatic
// lowercase atoms count like their uppercase forms; hydrogens are skipped.
func heavyAtomCount(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == 'C' && i+1 < len(s) && s[i+1] == 'l':
			n++
			i++
		case c == 'B' && i+1 < len(s) && s[i+1] == 'r':
			n++
			i++
		case c == 'H':
			// implicit or explicit hydrogen, not a heavy atom
		case c >= 'A' && c <= 'Z':
			n++
		case c == 'b' || c == 'c' || c == 'n' || c == 'o' || c == 'p' || c == 's':
			n++
		}
	}
	return n
}

// bondSymbolCount counts explicit bond characters.
func bondSymbolCount(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '-', '=', '#', ':', '/', '\\':
			n++
		}
	}
	return n
}

// ringClosureCount counts ring-closure digits, including %nn two-digit
// closures, and halves the total since closures come in pairs.
func ringClosureCount(s string) int {
	digits := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			digits++
			i += 2
			continue
		}
		if s[i] >= '0' && s[i] <= '9' {
			digits++
		}
	}
	return digits / 2
}
