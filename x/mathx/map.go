package mathx

import "golang.org/x/exp/constraints"

// Scale maps v in [0, inMax] onto [0, outMax], truncating. Values above inMax
// saturate; inMax == 0 yields 0.
func Scale[T constraints.Unsigned](v, inMax, outMax T) T {
	if inMax == 0 {
		return 0
	}
	if v >= inMax {
		return outMax
	}
	return T(uint64(v) * uint64(outMax) / uint64(inMax))
}
