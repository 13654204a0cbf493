// Package raster provides the nodata-aware multi-layer grid the pipeline
// operates on, plus the SQLite catalog the grids are persisted in. Decoding
// raster file formats is the loader's job, not this package's: grids arrive
// here as named float64 layers over a shared affine transform.
package raster

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
)

// ErrLayerNotFound marks a request for a layer a grid does not hold. It is
// fatal to the calling stage and surfaced immediately.
var ErrLayerNotFound = eris.New("raster: layer not found")

// Transform maps cell indices to geographic coordinates:
//
//	lon = OriginX + col*PixelWidth
//	lat = OriginY + row*PixelHeight
//
// PixelHeight is negative for the usual north-up rasters.
type Transform struct {
	OriginX     float64 `json:"origin_x"`
	OriginY     float64 `json:"origin_y"`
	PixelWidth  float64 `json:"pixel_width"`
	PixelHeight float64 `json:"pixel_height"`
}

// Apply returns the (lat, lon) of the cell at row, col.
func (t Transform) Apply(row, col int) (lat, lon float64) {
	return t.OriginY + float64(row)*t.PixelHeight, t.OriginX + float64(col)*t.PixelWidth
}

// Grid is a width x height raster holding one or more named layers aligned to
// a common transform. Cells hold float64 values; NODATA is represented by the
// declared sentinel or NaN. A Grid is built once by a loader and treated as
// immutable afterwards.
type Grid struct {
	width, height int
	transform     Transform
	nodata        float64

	names  []string // insertion order
	layers map[string][]float64
}

// CellFilter restricts an operation to a subset of cells; nil means all
// cells. Used for study-area masks.
type CellFilter func(row, col int) bool

// NewGrid creates an empty grid. Layers are attached with AddLayer during
// construction.
func NewGrid(width, height int, tr Transform, nodata float64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, eris.Errorf("raster: invalid dimensions %dx%d", width, height)
	}
	return &Grid{
		width:     width,
		height:    height,
		transform: tr,
		nodata:    nodata,
		layers:    make(map[string][]float64),
	}, nil
}

// AddLayer attaches a row-major layer. All layers must match the grid
// dimensions; re-adding a name replaces nothing and errors instead.
func (g *Grid) AddLayer(name string, values []float64) error {
	if len(values) != g.width*g.height {
		return eris.Errorf("raster: layer %q has %d values, grid is %dx%d", name, len(values), g.width, g.height)
	}
	if _, ok := g.layers[name]; ok {
		return eris.Errorf("raster: layer %q already present", name)
	}
	g.layers[name] = values
	g.names = append(g.names, name)
	return nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Cells returns the total cell count.
func (g *Grid) Cells() int { return g.width * g.height }

// Transform returns the grid's affine transform.
func (g *Grid) Transform() Transform { return g.transform }

// NoData returns the grid's NODATA sentinel.
func (g *Grid) NoData() float64 { return g.nodata }

// LayerNames returns the layer names in insertion order.
func (g *Grid) LayerNames() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// HasLayer reports whether the grid holds the named layer.
func (g *Grid) HasLayer(name string) bool {
	_, ok := g.layers[name]
	return ok
}

// Layer returns a read-only accessor for the named layer.
func (g *Grid) Layer(name string) (Layer, error) {
	values, ok := g.layers[name]
	if !ok {
		return Layer{}, eris.Wrapf(ErrLayerNotFound, "%q (grid has %v)", name, g.names)
	}
	return Layer{name: name, grid: g, values: values}, nil
}

// Value returns the raw value of a layer at row, col, NaN-normalized: the
// NODATA sentinel comes back as NaN so downstream code has a single missing
// marker.
func (g *Grid) Value(name string, row, col int) (float64, error) {
	l, err := g.Layer(name)
	if err != nil {
		return math.NaN(), err
	}
	return l.At(row, col), nil
}

// CellIsValid reports whether every named layer holds data at row, col. With
// no names it checks all layers.
func (g *Grid) CellIsValid(row, col int, names ...string) bool {
	if len(names) == 0 {
		names = g.names
	}
	for _, name := range names {
		values, ok := g.layers[name]
		if !ok {
			return false
		}
		if g.isNoData(values[row*g.width+col]) {
			return false
		}
	}
	return true
}

// CoordinateOf returns the geographic coordinate of a cell.
func (g *Grid) CoordinateOf(row, col int) (lat, lon float64) {
	return g.transform.Apply(row, col)
}

func (g *Grid) isNoData(v float64) bool {
	return math.IsNaN(v) || v == g.nodata
}

// Layer is a read-only 2D view over a single variable.
type Layer struct {
	name   string
	grid   *Grid
	values []float64
}

// Name returns the layer name.
func (l Layer) Name() string { return l.name }

// At returns the value at row, col with NODATA normalized to NaN.
func (l Layer) At(row, col int) float64 {
	v := l.values[row*l.grid.width+col]
	if l.grid.isNoData(v) {
		return math.NaN()
	}
	return v
}

// Raw returns the backing slice, row-major. Callers must not mutate it.
func (l Layer) Raw() []float64 { return l.values }

// Conventional layer names. Monthly layers are 1-based: tavg_01..tavg_12.
const (
	ElevationLayer = "elev"
)

// TavgLayer returns the mean-temperature layer name for month m (1..12).
func TavgLayer(m int) string { return fmt.Sprintf("tavg_%02d", m) }

// PrecLayer returns the precipitation layer name for month m (1..12).
func PrecLayer(m int) string { return fmt.Sprintf("prec_%02d", m) }

// BioLayer returns the bioclimatic-index layer name for index i (1..19).
func BioLayer(i int) string { return fmt.Sprintf("bio_%02d", i) }

// ClimateLayers returns the 24 monthly layer names the classifier requires.
func ClimateLayers() []string {
	names := make([]string, 0, 24)
	for m := 1; m <= 12; m++ {
		names = append(names, TavgLayer(m))
	}
	for m := 1; m <= 12; m++ {
		names = append(names, PrecLayer(m))
	}
	return names
}
