package ranking

import (
	"sort"
)

// Gini returns the Gini coefficient of a value distribution: 0 for perfect
// equality, approaching 1 as inequality grows. Values are sorted ascending,
// the 1-indexed weighted cumulative sum is accumulated, and the coefficient
// is 2·cum/(n·total) − (n+1)/n. Empty populations and zero totals return 0.
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var cumulative, total float64
	for i, v := range sorted {
		cumulative += float64(i+1) * v
		total += v
	}
	if total == 0 {
		return 0
	}

	return (2*cumulative)/(float64(n)*total) - float64(n+1)/float64(n)
}
