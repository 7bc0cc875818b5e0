package ranking

import (
	"time"
)

// Component weights for the final score. The four components always sum
// with these fixed coefficients; tuning them is a product decision, not a
// per-run input.
const (
	WeightEngagement   = 0.60
	WeightFreshness    = 0.15
	WeightUnderexposed = 0.15
	WeightDiversity    = 0.10
)

// DiversityPlaceholder is the constant diversity component. No diversity
// signal is computed yet; the placeholder keeps the weighting layout stable
// until one exists.
const DiversityPlaceholder = 1.0

// Freshness returns the inverse-age recency signal in (0, 1]:
// 1/(age_in_days + 1), with age floored at day granularity so same-day
// projects score exactly 1.
func Freshness(createdAt, now time.Time) float64 {
	days := int(now.Sub(createdAt).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return 1.0 / float64(days+1)
}

// MinMaxNormalize maps each value into [0, 1] relative to the population's
// min and max. When every value is identical the spread is zero; instead of
// dividing by zero every key maps to exactly 0.5. An empty input returns an
// empty map.
func MinMaxNormalize(values map[string]float64) map[string]float64 {
	if len(values) == 0 {
		return map[string]float64{}
	}

	first := true
	var vmin, vmax float64
	for _, v := range values {
		if first {
			vmin, vmax = v, v
			first = false
			continue
		}
		if v < vmin {
			vmin = v
		}
		if v > vmax {
			vmax = v
		}
	}

	normalized := make(map[string]float64, len(values))
	if vmin == vmax {
		for k := range values {
			normalized[k] = 0.5
		}
		return normalized
	}

	spread := vmax - vmin
	for k, v := range values {
		normalized[k] = (v - vmin) / spread
	}
	return normalized
}

// Clamp01 bounds a value to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FinalScore combines the normalized components with the fixed weights.
func FinalScore(engagement, freshness, underexposed, diversity float64) float64 {
	return WeightEngagement*engagement +
		WeightFreshness*freshness +
		WeightUnderexposed*underexposed +
		WeightDiversity*diversity
}
