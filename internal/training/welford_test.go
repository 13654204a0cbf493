package training

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
)

func TestAccumulatorMatchesBatchStatistics(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const dim, n = 3, 500

	acc := NewAccumulator(dim)
	cols := make([][]float64, dim)
	for j := range cols {
		cols[j] = make([]float64, 0, n)
	}
	for i := 0; i < n; i++ {
		vec := make([]float64, dim)
		for j := range vec {
			vec[j] = rng.NormFloat64()*float64(j+1) + float64(10*j)
			cols[j] = append(cols[j], vec[j])
		}
		require.NoError(t, acc.Add(vec))
	}

	require.EqualValues(t, n, acc.Count())
	for j := 0; j < dim; j++ {
		mean, variance := stat.MeanVariance(cols[j], nil)
		assert.InDelta(t, mean, acc.Mean(j), 1e-9)
		assert.InDelta(t, variance, acc.Variance(j), 1e-9)
	}
}

func TestMergeEquivalentToSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const dim, n = 2, 300

	vecs := make([][]float64, n)
	for i := range vecs {
		vecs[i] = []float64{rng.NormFloat64() * 5, rng.NormFloat64()*0.1 + 100}
	}

	sequential := NewAccumulator(dim)
	for _, v := range vecs {
		require.NoError(t, sequential.Add(v))
	}

	// Split at an uneven boundary and merge in both orders.
	for _, split := range []int{1, 37, 150, n - 1} {
		a, b := NewAccumulator(dim), NewAccumulator(dim)
		for _, v := range vecs[:split] {
			require.NoError(t, a.Add(v))
		}
		for _, v := range vecs[split:] {
			require.NoError(t, b.Add(v))
		}

		forward := NewAccumulator(dim)
		require.NoError(t, forward.Merge(a))
		require.NoError(t, forward.Merge(b))

		reverse := NewAccumulator(dim)
		require.NoError(t, reverse.Merge(b))
		require.NoError(t, reverse.Merge(a))

		for _, merged := range []*Accumulator{forward, reverse} {
			require.Equal(t, sequential.Count(), merged.Count())
			for j := 0; j < dim; j++ {
				assert.InDelta(t, sequential.Mean(j), merged.Mean(j), 1e-9, "split %d dim %d", split, j)
				assert.InDelta(t, sequential.Variance(j), merged.Variance(j), 1e-9, "split %d dim %d", split, j)
			}
		}
	}
}

func TestMergeEmptySides(t *testing.T) {
	a := NewAccumulator(1)
	require.NoError(t, a.Add([]float64{3}))
	require.NoError(t, a.Add([]float64{5}))

	empty := NewAccumulator(1)
	require.NoError(t, a.Merge(empty))
	assert.EqualValues(t, 2, a.Count())
	assert.Equal(t, 4.0, a.Mean(0))

	fresh := NewAccumulator(1)
	require.NoError(t, fresh.Merge(a))
	assert.EqualValues(t, 2, fresh.Count())
	assert.Equal(t, 4.0, fresh.Mean(0))
	assert.Equal(t, a.Variance(0), fresh.Variance(0))
}

func TestAccumulatorDimensionMismatch(t *testing.T) {
	acc := NewAccumulator(2)
	assert.Error(t, acc.Add([]float64{1, 2, 3}))
	assert.Error(t, acc.Merge(NewAccumulator(3)))
}

func TestVarianceNeedsTwoExamples(t *testing.T) {
	acc := NewAccumulator(1)
	require.NoError(t, acc.Add([]float64{9}))
	assert.Equal(t, 0.0, acc.Variance(0))
}

func TestMergeStats(t *testing.T) {
	dst := make(Stats)
	a := NewAccumulator(1)
	require.NoError(t, a.Add([]float64{1}))
	dst[koppen.Af] = a

	src := make(Stats)
	b := NewAccumulator(1)
	require.NoError(t, b.Add([]float64{3}))
	src[koppen.Af] = b
	c := NewAccumulator(1)
	require.NoError(t, c.Add([]float64{-5}))
	src[koppen.ET] = c

	require.NoError(t, MergeStats(dst, src))
	assert.EqualValues(t, 2, dst[koppen.Af].Count())
	assert.Equal(t, 2.0, dst[koppen.Af].Mean(0))
	assert.EqualValues(t, 1, dst[koppen.ET].Count())
}

func TestSetAccumulate(t *testing.T) {
	set := make(Set)
	set.Add(koppen.Af, []float64{26, 2400})
	set.Add(koppen.Af, []float64{28, 2600})
	set.Add(koppen.BWh, []float64{25, 100})

	stats, err := set.Accumulate(2)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 27.0, stats[koppen.Af].Mean(0))
	assert.Equal(t, 2500.0, stats[koppen.Af].Mean(1))
	assert.EqualValues(t, 1, stats[koppen.BWh].Count())
}
