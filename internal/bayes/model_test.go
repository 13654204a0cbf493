package bayes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
	"github.com/DylanKirbs/BiomeClassification/internal/training"
)

// twoClassStats builds single-feature statistics with mean 27 / variance 1
// for Af and mean -5 / variance 1 for ET, two examples each.
func twoClassStats(t *testing.T) training.Stats {
	t.Helper()
	d := 1 / math.Sqrt2 // two samples at mean±d give sample variance 1

	set := make(training.Set)
	set.Add(koppen.Af, []float64{27 - d})
	set.Add(koppen.Af, []float64{27 + d})
	set.Add(koppen.ET, []float64{-5 - d})
	set.Add(koppen.ET, []float64{-5 + d})

	stats, err := set.Accumulate(1)
	require.NoError(t, err)
	return stats
}

func TestPredictSeparatedClasses(t *testing.T) {
	m, err := Fit(twoClassStats(t), []string{"tann"})
	require.NoError(t, err)

	pred, err := m.Predict([]float64{26})
	require.NoError(t, err)
	assert.Equal(t, koppen.Af, pred.Label)
	assert.Greater(t, pred.Posterior, 0.99)

	pred, err = m.Predict([]float64{-4})
	require.NoError(t, err)
	assert.Equal(t, koppen.ET, pred.Label)
	assert.Greater(t, pred.Posterior, 0.99)
}

func TestPosteriorsNormalized(t *testing.T) {
	m, err := Fit(twoClassStats(t), []string{"tann"})
	require.NoError(t, err)

	for _, x := range []float64{-20, -5, 11, 26, 40} {
		posteriors, err := m.Posteriors([]float64{x})
		require.NoError(t, err)

		var sum float64
		for _, p := range posteriors {
			require.GreaterOrEqual(t, p, 0.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-12, "x=%v", x)
	}
}

func TestPredictTieBreaksLexicographically(t *testing.T) {
	set := make(training.Set)
	for _, label := range []koppen.Label{koppen.Aw, koppen.Af} {
		set.Add(label, []float64{10})
		set.Add(label, []float64{12})
	}
	stats, err := set.Accumulate(1)
	require.NoError(t, err)

	m, err := Fit(stats, []string{"tann"})
	require.NoError(t, err)

	pred, err := m.Predict([]float64{11})
	require.NoError(t, err)
	assert.Equal(t, koppen.Af, pred.Label)
	assert.InDelta(t, 0.5, pred.Posterior, 1e-12)
}

func TestFitAppliesVarianceFloor(t *testing.T) {
	set := make(training.Set)
	set.Add(koppen.BWh, []float64{25}) // single example: zero sample variance
	set.Add(koppen.EF, []float64{-30})
	stats, err := set.Accumulate(1)
	require.NoError(t, err)

	m, err := Fit(stats, []string{"tann"})
	require.NoError(t, err)

	c, ok := m.Class(koppen.BWh)
	require.True(t, ok)
	assert.Equal(t, VarianceFloor, c.Variance[0])

	pred, err := m.Predict([]float64{2})
	require.NoError(t, err)
	assert.False(t, math.IsNaN(pred.Posterior))
}

func TestPosteriorsIgnoreClassImbalance(t *testing.T) {
	// Both classes share mean 10 and sample variance 1; Aw has four times
	// the examples. Class frequency carries no weight, so a query at the
	// shared mean splits evenly.
	set := make(training.Set)
	addBalanced := func(label koppen.Label, n int) {
		d := math.Sqrt(float64(n-1) / float64(n))
		for i := 0; i < n/2; i++ {
			set.Add(label, []float64{10 - d})
			set.Add(label, []float64{10 + d})
		}
	}
	addBalanced(koppen.Af, 10)
	addBalanced(koppen.Aw, 40)

	stats, err := set.Accumulate(1)
	require.NoError(t, err)
	m, err := Fit(stats, []string{"tann"})
	require.NoError(t, err)

	af, _ := m.Class(koppen.Af)
	aw, _ := m.Class(koppen.Aw)
	assert.Equal(t, int64(10), af.Count)
	assert.Equal(t, int64(40), aw.Count)

	posteriors, err := m.Posteriors([]float64{10})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, posteriors[koppen.Af], 1e-9)
	assert.InDelta(t, 0.5, posteriors[koppen.Aw], 1e-9)
}

func TestFitRejectsEmptyClass(t *testing.T) {
	set := make(training.Set)
	set.Add(koppen.Af, []float64{27})
	set.Add(koppen.Af, []float64{26})
	stats, err := set.Accumulate(1)
	require.NoError(t, err)
	stats[koppen.ET] = training.NewAccumulator(1)

	_, err = Fit(stats, []string{"tann"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyClass)
	assert.Contains(t, err.Error(), "ET")
}

func TestFitErrors(t *testing.T) {
	_, err := Fit(make(training.Stats), []string{"tann"})
	assert.ErrorIs(t, err, ErrNoClasses)

	_, err = Fit(make(training.Stats), nil)
	assert.Error(t, err)

	set := make(training.Set)
	set.Add(koppen.Af, []float64{1, 2})
	stats, err := set.Accumulate(2)
	require.NoError(t, err)
	_, err = Fit(stats, []string{"tann"})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestPredictDimensionMismatch(t *testing.T) {
	m, err := Fit(twoClassStats(t), []string{"tann"})
	require.NoError(t, err)

	_, err = m.Predict([]float64{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
