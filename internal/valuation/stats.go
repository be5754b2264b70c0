package valuation

import (
	"math"
	"sort"
)

// Summary aggregates a numeric series. Mean and standard deviation respect
// the active weighting; median and range are always computed on the raw
// series. That asymmetry is deliberate: the median is a "simple"-only
// statistic regardless of strategy.
type Summary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// Summarize computes the weighted summary of values. A nil or mismatched
// weight slice falls back to uniform weights. The empty series yields the
// all-zero summary; callers guard their own divisions rather than receiving
// NaN from here.
func Summarize(values, weights []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	uniform := len(weights) != n
	var sum, weightSum float64
	for i, v := range values {
		w := 1.0
		if !uniform {
			w = weights[i]
		}
		sum += v * w
		weightSum += w
	}
	if weightSum <= 0 {
		return Summary{Count: n}
	}
	mean := sum / weightSum

	// Population deviation about the (weighted) mean.
	var sqSum float64
	minV, maxV := values[0], values[0]
	for _, v := range values {
		sqSum += (v - mean) * (v - mean)
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	return Summary{
		Mean:   mean,
		Median: Median(values),
		StdDev: math.Sqrt(sqSum / float64(n)),
		Min:    minV,
		Max:    maxV,
		Count:  n,
	}
}

// Median returns the midpoint of the series, averaging the two midpoints
// for even lengths. The input is not modified.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
