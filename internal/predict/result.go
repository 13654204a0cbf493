// Package predict applies the Köppen rule engine or a fitted Naive Bayes
// model across raster grids, producing label-code grids with posterior
// confidence. Inference is read-only over its inputs and idempotent.
package predict

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
	"github.com/DylanKirbs/BiomeClassification/internal/raster"
)

// Layer names carried by exported result grids.
const (
	CodeLayer      = "koppen_code"
	PosteriorLayer = "posterior"
)

// Result holds one classification pass over a grid. Codes index
// koppen.Labels (0 means NODATA or skipped); Posteriors holds the winning
// class probability per cell, NaN where the code is 0.
type Result struct {
	width, height int
	transform     raster.Transform

	Codes      []int
	Posteriors []float64
}

func newResult(g *raster.Grid) *Result {
	n := g.Width() * g.Height()
	r := &Result{
		width:      g.Width(),
		height:     g.Height(),
		transform:  g.Transform(),
		Codes:      make([]int, n),
		Posteriors: make([]float64, n),
	}
	for i := range r.Posteriors {
		r.Posteriors[i] = math.NaN()
	}
	return r
}

// Width returns the grid width.
func (r *Result) Width() int { return r.width }

// Height returns the grid height.
func (r *Result) Height() int { return r.height }

// At returns the label and posterior for a cell; ok is false where the cell
// was NODATA or skipped.
func (r *Result) At(row, col int) (label koppen.Label, posterior float64, ok bool) {
	i := row*r.width + col
	code := r.Codes[i]
	if code == 0 {
		return "", 0, false
	}
	label, _ = koppen.FromCode(code)
	return label, r.Posteriors[i], true
}

func (r *Result) set(row, col int, label koppen.Label, posterior float64) {
	i := row*r.width + col
	r.Codes[i] = label.Code()
	r.Posteriors[i] = posterior
}

// ClassCounts tallies classified cells per label. Skipped cells are absent.
func (r *Result) ClassCounts() map[koppen.Label]int64 {
	counts := make(map[koppen.Label]int64)
	for _, code := range r.Codes {
		if code == 0 {
			continue
		}
		label, ok := koppen.FromCode(code)
		if !ok {
			continue
		}
		counts[label]++
	}
	return counts
}

// Classified returns the number of cells that received a label.
func (r *Result) Classified() int64 {
	var n int64
	for _, code := range r.Codes {
		if code != 0 {
			n++
		}
	}
	return n
}

// ToGrid exports the result as a raster grid with a label-code layer and a
// posterior layer, using nodata as the sentinel for unclassified cells.
func (r *Result) ToGrid(nodata float64) (*raster.Grid, error) {
	g, err := raster.NewGrid(r.width, r.height, r.transform, nodata)
	if err != nil {
		return nil, err
	}

	codes := make([]float64, len(r.Codes))
	posts := make([]float64, len(r.Codes))
	for i, code := range r.Codes {
		if code == 0 {
			codes[i] = nodata
			posts[i] = nodata
			continue
		}
		codes[i] = float64(code)
		posts[i] = r.Posteriors[i]
	}

	if err := g.AddLayer(CodeLayer, codes); err != nil {
		return nil, err
	}
	if err := g.AddLayer(PosteriorLayer, posts); err != nil {
		return nil, err
	}
	return g, nil
}

// ResultFromGrid rebuilds a result from a grid previously exported with
// ToGrid, so stored label grids can be reported on later.
func ResultFromGrid(g *raster.Grid) (*Result, error) {
	codes, err := g.Layer(CodeLayer)
	if err != nil {
		return nil, err
	}
	posts, err := g.Layer(PosteriorLayer)
	if err != nil {
		return nil, err
	}

	r := newResult(g)
	for row := 0; row < g.Height(); row++ {
		for col := 0; col < g.Width(); col++ {
			v := codes.At(row, col)
			if v != v {
				continue
			}
			label, ok := koppen.FromCode(int(v))
			if !ok {
				return nil, eris.Errorf("predict: grid holds unknown label code %v at (%d,%d)", v, row, col)
			}
			r.set(row, col, label, posts.At(row, col))
		}
	}
	return r, nil
}
