// Package feature turns raster cells into the fixed-order continuous vectors
// the Naive Bayes model consumes. The derived features reuse the exact
// aggregate formulas of the Köppen rule engine so training labels and
// features always describe the same climate.
package feature

import (
	"github.com/rotisserie/eris"

	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
	"github.com/DylanKirbs/BiomeClassification/internal/raster"
)

// Derived feature names, in vector order. Passthrough layer values follow
// these.
var derivedNames = []string{
	"tann",          // annual mean temperature
	"pann",          // annual precipitation total
	"tmax",          // warmest monthly mean
	"tmin",          // coldest monthly mean
	"trange",        // tmax - tmin
	"psummer_ratio", // share of precipitation falling in the high-sun half
	"pmin_month",    // driest month precipitation
}

// Schema fixes the dimensionality and ordering of feature vectors. Training
// and inference must share a schema; the persisted model records it and the
// loader rejects mismatches.
type Schema struct {
	// Passthrough lists raster layers appended verbatim after the derived
	// features (bioclimatic indices, elevation).
	Passthrough []string
}

// Names returns the full ordered feature-name list.
func (s Schema) Names() []string {
	names := make([]string, 0, len(derivedNames)+len(s.Passthrough))
	names = append(names, derivedNames...)
	names = append(names, s.Passthrough...)
	return names
}

// Dim returns the vector dimensionality.
func (s Schema) Dim() int {
	return len(derivedNames) + len(s.Passthrough)
}

// Extractor computes feature vectors from raster cells or raw climate
// records. It is pure and safe for concurrent use.
type Extractor struct {
	schema Schema
}

// NewExtractor builds an extractor over a schema.
func NewExtractor(schema Schema) Extractor {
	return Extractor{schema: schema}
}

// Schema returns the extractor's schema.
func (e Extractor) Schema() Schema { return e.schema }

// Dim returns the vector dimensionality.
func (e Extractor) Dim() int { return e.schema.Dim() }

// Names returns the ordered feature names.
func (e Extractor) Names() []string { return e.schema.Names() }

// RequiredLayers returns every raster layer the extractor reads: the 24
// monthly climate layers plus the schema's passthrough layers.
func (e Extractor) RequiredLayers() []string {
	return append(raster.ClimateLayers(), e.schema.Passthrough...)
}

// RecordAt assembles the climate record for a cell. Missing months surface
// as koppen.ErrInsufficientData.
func RecordAt(g *raster.Grid, row, col int) (koppen.Record, error) {
	temps := make([]float64, koppen.MonthsPerYear)
	precs := make([]float64, koppen.MonthsPerYear)
	for m := 1; m <= koppen.MonthsPerYear; m++ {
		tl, err := g.Layer(raster.TavgLayer(m))
		if err != nil {
			return koppen.Record{}, err
		}
		pl, err := g.Layer(raster.PrecLayer(m))
		if err != nil {
			return koppen.Record{}, err
		}
		temps[m-1] = tl.At(row, col)
		precs[m-1] = pl.At(row, col)
	}
	lat, _ := g.CoordinateOf(row, col)
	return koppen.NewRecord(temps, precs, lat)
}

// Extract computes the feature vector for a cell. Cells with missing monthly
// data yield koppen.ErrInsufficientData; a missing passthrough layer is a
// structural raster.ErrLayerNotFound.
func (e Extractor) Extract(g *raster.Grid, row, col int) ([]float64, error) {
	rec, err := RecordAt(g, row, col)
	if err != nil {
		return nil, err
	}
	extra, err := e.PassthroughAt(g, row, col)
	if err != nil {
		return nil, err
	}
	return e.FromRecord(rec, extra), nil
}

// PassthroughAt reads the schema's passthrough layer values for a cell.
// Missing values surface as koppen.ErrInsufficientData since a passthrough
// layer is required for cell validity.
func (e Extractor) PassthroughAt(g *raster.Grid, row, col int) ([]float64, error) {
	extra := make([]float64, 0, len(e.schema.Passthrough))
	for _, name := range e.schema.Passthrough {
		layer, err := g.Layer(name)
		if err != nil {
			return nil, err
		}
		v := layer.At(row, col)
		if v != v {
			return nil, eris.Wrapf(koppen.ErrInsufficientData, "layer %s at cell (%d,%d)", name, row, col)
		}
		extra = append(extra, v)
	}
	return extra, nil
}

// FromRecord computes the vector from an already-assembled record plus the
// passthrough values in schema order. Used directly by the HTTP service.
func (e Extractor) FromRecord(rec koppen.Record, passthrough []float64) []float64 {
	s := koppen.Summarize(rec)

	vec := make([]float64, 0, e.Dim())
	vec = append(vec,
		s.Tann,
		s.Pann,
		s.Tmax,
		s.Tmin,
		s.Tmax-s.Tmin,
		summerRatio(s),
		s.Pmin,
	)
	vec = append(vec, passthrough...)
	return vec
}

func summerRatio(s koppen.Stats) float64 {
	if s.Pann == 0 {
		return 0
	}
	return s.Psummer / s.Pann
}
