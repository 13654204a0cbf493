// Package training joins Köppen labels with feature vectors across a raster
// grid and reduces them into per-label, per-feature streaming statistics.
// Accumulation is Welford's algorithm with the parallel merge rule, so the
// reduction is associative and partition boundaries never change the result
// beyond floating-point rounding.
package training

import (
	"github.com/rotisserie/eris"

	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
)

// Accumulator tracks running mean and M2 (sum of squared deviations) per
// feature dimension for one class.
type Accumulator struct {
	dim  int
	n    int64
	mean []float64
	m2   []float64
}

// NewAccumulator creates an accumulator for vectors of the given
// dimensionality.
func NewAccumulator(dim int) *Accumulator {
	return &Accumulator{
		dim:  dim,
		mean: make([]float64, dim),
		m2:   make([]float64, dim),
	}
}

// Dim returns the feature dimensionality.
func (a *Accumulator) Dim() int { return a.dim }

// Count returns the number of accumulated examples.
func (a *Accumulator) Count() int64 { return a.n }

// Add folds one feature vector into the running statistics.
func (a *Accumulator) Add(x []float64) error {
	if len(x) != a.dim {
		return eris.Errorf("training: vector has %d dimensions, accumulator expects %d", len(x), a.dim)
	}
	a.n++
	for j, v := range x {
		delta := v - a.mean[j]
		a.mean[j] += delta / float64(a.n)
		a.m2[j] += delta * (v - a.mean[j])
	}
	return nil
}

// Merge folds another accumulator into this one using the parallel Welford
// combination. The operation is commutative and associative up to
// floating-point rounding, which is what makes partitioned reduction safe.
func (a *Accumulator) Merge(b *Accumulator) error {
	if b.dim != a.dim {
		return eris.Errorf("training: cannot merge %d-dim accumulator into %d-dim", b.dim, a.dim)
	}
	if b.n == 0 {
		return nil
	}
	if a.n == 0 {
		a.n = b.n
		copy(a.mean, b.mean)
		copy(a.m2, b.m2)
		return nil
	}

	na, nb := float64(a.n), float64(b.n)
	total := na + nb
	for j := 0; j < a.dim; j++ {
		delta := b.mean[j] - a.mean[j]
		a.mean[j] += delta * nb / total
		a.m2[j] += b.m2[j] + delta*delta*na*nb/total
	}
	a.n += b.n
	return nil
}

// Mean returns the running mean of feature j.
func (a *Accumulator) Mean(j int) float64 { return a.mean[j] }

// Variance returns the unbiased sample variance of feature j. It is zero
// until at least two examples have been seen.
func (a *Accumulator) Variance(j int) float64 {
	if a.n < 2 {
		return 0
	}
	return a.m2[j] / float64(a.n-1)
}

// Stats maps each label to its accumulated feature statistics.
type Stats map[koppen.Label]*Accumulator

// MergeStats folds src into dst, creating accumulators for labels dst has
// not seen.
func MergeStats(dst, src Stats) error {
	for label, acc := range src {
		existing, ok := dst[label]
		if !ok {
			dst[label] = acc
			continue
		}
		if err := existing.Merge(acc); err != nil {
			return eris.Wrapf(err, "training: merge label %s", label)
		}
	}
	return nil
}

// Set is an in-memory training corpus: every feature vector observed per
// label. Suited to small corpora and tests; large grids should stream
// through Builder instead.
type Set map[koppen.Label][][]float64

// Add appends one example.
func (s Set) Add(label koppen.Label, vec []float64) {
	s[label] = append(s[label], vec)
}

// Accumulate reduces the set into streaming statistics.
func (s Set) Accumulate(dim int) (Stats, error) {
	stats := make(Stats, len(s))
	for label, vecs := range s {
		acc := NewAccumulator(dim)
		for _, v := range vecs {
			if err := acc.Add(v); err != nil {
				return nil, eris.Wrapf(err, "training: label %s", label)
			}
		}
		stats[label] = acc
	}
	return stats, nil
}
