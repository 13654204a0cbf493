// Package bayes implements Gaussian Naive Bayes over the per-label feature
// statistics produced by the training package. Classes are equiprobable, so
// scoring is pure likelihood. Likelihoods assume feature independence, and
// all probability arithmetic stays in log space until the final
// normalization.
package bayes

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
	"github.com/DylanKirbs/BiomeClassification/internal/training"
)

// VarianceFloor replaces any smaller (or zero) per-feature variance so the
// Gaussian log-density stays finite for degenerate classes.
const VarianceFloor = 1e-9

// ErrNoClasses is returned by Fit when the statistics hold no classes at all.
var ErrNoClasses = eris.New("bayes: no classes with examples")

// ErrEmptyClass is returned by Fit when a label is present in the statistics
// but carries zero training examples. Fitting aborts rather than silently
// dropping the class.
var ErrEmptyClass = eris.New("bayes: class has no training examples")

// ErrDimensionMismatch is returned when a query vector's length does not
// match the model's feature list.
var ErrDimensionMismatch = eris.New("bayes: feature vector dimension mismatch")

// Class holds the fitted parameters for one label. Count is bookkeeping
// only: classes are equiprobable, so no prior enters the scoring and the
// uniform term cancels in the normalization.
type Class struct {
	Count    int64     `json:"count"`
	Mean     []float64 `json:"mean"`
	Variance []float64 `json:"variance"`
}

// Model is a fitted Gaussian Naive Bayes classifier. It is immutable after
// Fit or Load and safe for concurrent use.
type Model struct {
	features []string
	labels   []koppen.Label
	classes  map[koppen.Label]Class
}

// Fit estimates the model from streaming statistics. Feature names fix the
// vector order for later queries; every accumulator must match their length.
// A label with zero examples aborts the fit. Classes with a single example
// get floor variance in every dimension.
func Fit(stats training.Stats, features []string) (*Model, error) {
	if len(features) == 0 {
		return nil, eris.New("bayes: empty feature list")
	}
	if len(stats) == 0 {
		return nil, ErrNoClasses
	}

	for label, acc := range stats {
		if acc.Dim() != len(features) {
			return nil, eris.Wrapf(ErrDimensionMismatch, "label %s has %d dims, want %d", label, acc.Dim(), len(features))
		}
		if acc.Count() == 0 {
			return nil, eris.Wrapf(ErrEmptyClass, "label %s", label)
		}
	}

	m := &Model{
		features: append([]string(nil), features...),
		classes:  make(map[koppen.Label]Class, len(stats)),
	}
	for label, acc := range stats {
		c := Class{
			Count:    acc.Count(),
			Mean:     make([]float64, len(features)),
			Variance: make([]float64, len(features)),
		}
		for j := range features {
			c.Mean[j] = acc.Mean(j)
			v := acc.Variance(j)
			if v < VarianceFloor {
				v = VarianceFloor
			}
			c.Variance[j] = v
		}
		m.classes[label] = c
		m.labels = append(m.labels, label)
	}

	sort.Slice(m.labels, func(i, j int) bool { return m.labels[i] < m.labels[j] })
	return m, nil
}

// Features returns the ordered feature names the model was fitted on.
func (m *Model) Features() []string {
	return append([]string(nil), m.features...)
}

// Labels returns the model's classes in lexicographic order.
func (m *Model) Labels() []koppen.Label {
	return append([]koppen.Label(nil), m.labels...)
}

// Class returns the fitted parameters for a label.
func (m *Model) Class(label koppen.Label) (Class, bool) {
	c, ok := m.classes[label]
	return c, ok
}

// Prediction is the outcome of classifying one feature vector.
type Prediction struct {
	Label koppen.Label
	// Posterior is the normalized probability of Label given the vector.
	Posterior float64
}

// Predict returns the maximum-posterior label for x. Ties resolve to the
// lexicographically smallest label because scoring walks labels in sorted
// order and only a strictly greater score displaces the leader.
func (m *Model) Predict(x []float64) (Prediction, error) {
	posteriors, err := m.Posteriors(x)
	if err != nil {
		return Prediction{}, err
	}

	best := Prediction{Posterior: math.Inf(-1)}
	for _, label := range m.labels {
		if p := posteriors[label]; p > best.Posterior {
			best = Prediction{Label: label, Posterior: p}
		}
	}
	return best, nil
}

// Posteriors returns the full normalized posterior distribution over labels.
func (m *Model) Posteriors(x []float64) (map[koppen.Label]float64, error) {
	if len(x) != len(m.features) {
		return nil, eris.Wrapf(ErrDimensionMismatch, "got %d values, model has %d features", len(x), len(m.features))
	}

	scores := make([]float64, len(m.labels))
	for i, label := range m.labels {
		scores[i] = m.logLikelihood(m.classes[label], x)
	}
	logEvidence := floats.LogSumExp(scores)

	out := make(map[koppen.Label]float64, len(m.labels))
	for i, label := range m.labels {
		out[label] = math.Exp(scores[i] - logEvidence)
	}
	return out, nil
}

// logLikelihood is the sum of per-feature Gaussian log densities. There is
// no prior term: a uniform prior over classes cancels in the normalization.
func (m *Model) logLikelihood(c Class, x []float64) float64 {
	var s float64
	for j, v := range x {
		n := distuv.Normal{Mu: c.Mean[j], Sigma: math.Sqrt(c.Variance[j])}
		s += n.LogProb(v)
	}
	return s
}
