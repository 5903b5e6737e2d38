package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBootstrapCI_EmptyScores(t *testing.T) {
	ci := BootstrapCIWithSeed(nil, 0.95, 42)
	if ci.Mean != 0.0 || ci.Lower != 0.0 || ci.Upper != 0.0 {
		t.Errorf("expected zero CI for empty input, got %+v", ci)
	}
	if ci.NumBootstraps != 0 {
		t.Errorf("expected 0 bootstraps for empty input, got %d", ci.NumBootstraps)
	}
}

func TestBootstrapCI_SingleValue(t *testing.T) {
	ci := BootstrapCIWithSeed([]float64{1}, 0.95, 42)
	if ci.Mean != 1 || ci.Lower != 1 || ci.Upper != 1 {
		t.Errorf("expected degenerate CI for single value, got %+v", ci)
	}
}

func TestBootstrapCI_IdenticalValues(t *testing.T) {
	ci := BootstrapCIWithSeed([]float64{1, 1, 1, 1}, 0.95, 42)
	if math.Abs(ci.Lower-1) > 1e-9 || math.Abs(ci.Upper-1) > 1e-9 {
		t.Errorf("expected CI [1, 1] for identical values, got [%f, %f]", ci.Lower, ci.Upper)
	}
}

func TestBootstrapCI_HitRate(t *testing.T) {
	// 6 hits out of 10 samples
	scores := []float64{1, 0, 1, 1, 0, 1, 0, 1, 1, 0}
	ci := BootstrapCIWithSeed(scores, 0.95, 42)

	assert.InDelta(t, 0.6, ci.Mean, 1e-9)
	assert.Less(t, ci.Lower, ci.Mean)
	assert.Greater(t, ci.Upper, ci.Mean)
	assert.GreaterOrEqual(t, ci.Lower, 0.0)
	assert.LessOrEqual(t, ci.Upper, 1.0)
	assert.Equal(t, DefaultBootstrapIterations, ci.NumBootstraps)
}

func TestBootstrapCI_SeedIsReproducible(t *testing.T) {
	scores := []float64{0, 1, 1, 0, 1}
	assert.Equal(t, BootstrapCIWithSeed(scores, 0.9, 7), BootstrapCIWithSeed(scores, 0.9, 7))
}

func TestPercentileInterval(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[99-i] = float64(i)
	}
	lo, hi := PercentileInterval(values, 0.95)
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 97.0, hi)
	assert.Equal(t, 0.0, values[99], "input must not be reordered")

	lo, hi = PercentileInterval(nil, 0.95)
	assert.Zero(t, lo)
	assert.Zero(t, hi)

	lo, hi = PercentileInterval([]float64{5}, 0.95)
	assert.Equal(t, 5.0, lo)
	assert.Equal(t, 5.0, hi)
}

func TestMean(t *testing.T) {
	assert.Zero(t, Mean(nil))
	assert.InDelta(t, 3.0, Mean([]float64{1, 2, 3, 4, 5}), 1e-12)
}
