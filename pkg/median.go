package magnify

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Median returns the median of samples without modifying them.
func Median[T constraints.Integer | constraints.Float](samples []T) (float64, error) {
	n := len(samples)
	if n == 0 {
		return 0, &ErrInvalid{What: "sample sequence", Reason: "empty"}
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	if n%2 != 0 {
		return float64(sorted[n/2]), nil
	}
	return (float64(sorted[n/2-1]) + float64(sorted[n/2])) / 2.0, nil
}
