// Package statistics provides resampling helpers shared by the ranking and
// metrics engines.
package statistics

import (
	"math"
	"math/rand"
	"sort"
)

// ConfidenceInterval holds a percentile interval around a mean.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// DefaultBootstrapIterations is the number of bootstrap resamples.
const DefaultBootstrapIterations = 2000

// DefaultConfidenceLevel is used when callers do not pick one.
const DefaultConfidenceLevel = 0.95

// BootstrapCIWithSeed computes a bootstrap confidence interval over the
// given scores using the percentile method. confidenceLevel should be in
// (0, 1). A negative seed uses a non-deterministic source. Fewer than 2 data
// points yield a degenerate interval at the mean.
func BootstrapCIWithSeed(scores []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	n := len(scores)
	if n < 2 {
		m := Mean(scores)
		return ConfidenceInterval{
			Lower:           m,
			Upper:           m,
			Mean:            m,
			ConfidenceLevel: confidenceLevel,
		}
	}

	var rng *rand.Rand
	if seed >= 0 {
		rng = rand.New(rand.NewSource(seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	iters := DefaultBootstrapIterations
	bootMeans := make([]float64, iters)
	sample := make([]float64, n)
	for i := 0; i < iters; i++ {
		for j := 0; j < n; j++ {
			sample[j] = scores[rng.Intn(n)]
		}
		bootMeans[i] = Mean(sample)
	}

	lo, hi := PercentileInterval(bootMeans, confidenceLevel)
	return ConfidenceInterval{
		Lower:           lo,
		Upper:           hi,
		Mean:            Mean(scores),
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   iters,
	}
}

// PercentileInterval returns the (alpha/2, 1-alpha/2) percentiles of values
// where alpha = 1 - confidenceLevel. values is not modified. Empty input
// yields (0, 0).
func PercentileInterval(values []float64, confidenceLevel float64) (float64, float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	alpha := 1.0 - confidenceLevel
	loIdx := int(math.Floor(alpha / 2.0 * float64(n)))
	hiIdx := int(math.Floor((1.0 - alpha/2.0) * float64(n)))
	if loIdx < 0 {
		loIdx = 0
	}
	if hiIdx >= n {
		hiIdx = n - 1
	}
	return sorted[loIdx], sorted[hiIdx]
}

// Mean is the arithmetic mean, 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
