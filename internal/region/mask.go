// Package region restricts pipeline runs to a geographic area described by
// a polygon shapefile. A mask turns into a raster cell filter by testing
// each cell's center coordinate against the polygon rings.
package region

import (
	"math"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/DylanKirbs/BiomeClassification/internal/raster"
)

// Mask is a point-in-region test over a set of polygon rings. Containment
// uses the even-odd rule across all rings, so hole rings cut out of their
// parents without orientation bookkeeping.
type Mask struct {
	rings [][]float64 // flat XY coords per ring, closed

	minX, minY float64
	maxX, maxY float64
}

// LoadShapefile reads every polygon shape from a .shp file into a mask.
// Non-polygon shapes are skipped with a log line.
func LoadShapefile(path string) (*Mask, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "region: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	log := zap.L().With(zap.String("component", "region.mask"))

	m := newMask()
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		m.addPolygon(poly)
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "region: read shapefile %s", path)
	}
	if skipped > 0 {
		log.Warn("skipped non-polygon shapes", zap.Int("count", skipped))
	}
	if len(m.rings) == 0 {
		return nil, eris.Errorf("region: shapefile %s holds no polygon shapes", path)
	}

	log.Info("region mask loaded", zap.String("path", path), zap.Int("rings", len(m.rings)))
	return m, nil
}

// FromMultiPolygon builds a mask from an in-memory geometry.
func FromMultiPolygon(mp *geom.MultiPolygon) *Mask {
	m := newMask()
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for j := 0; j < poly.NumLinearRings(); j++ {
			m.addRing(poly.LinearRing(j).FlatCoords())
		}
	}
	return m
}

func newMask() *Mask {
	return &Mask{
		minX: math.Inf(1), minY: math.Inf(1),
		maxX: math.Inf(-1), maxY: math.Inf(-1),
	}
}

func (m *Mask) addPolygon(p *shp.Polygon) {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return
	}
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		m.addRing(flat)
	}
}

func (m *Mask) addRing(flat []float64) {
	if len(flat) < 6 { // fewer than three vertices
		return
	}
	for i := 0; i < len(flat); i += 2 {
		m.minX = math.Min(m.minX, flat[i])
		m.maxX = math.Max(m.maxX, flat[i])
		m.minY = math.Min(m.minY, flat[i+1])
		m.maxY = math.Max(m.maxY, flat[i+1])
	}
	m.rings = append(m.rings, flat)
}

// Rings returns the number of polygon rings in the mask.
func (m *Mask) Rings() int { return len(m.rings) }

// Contains reports whether the longitude/latitude point falls inside the
// region under the even-odd rule.
func (m *Mask) Contains(lon, lat float64) bool {
	if lon < m.minX || lon > m.maxX || lat < m.minY || lat > m.maxY {
		return false
	}
	pt := geom.Coord{lon, lat}
	inside := false
	for _, ring := range m.rings {
		if xy.IsPointInRing(geom.XY, pt, ring) {
			inside = !inside
		}
	}
	return inside
}

// Filter adapts the mask to a cell filter over a specific grid, testing each
// cell's center coordinate.
func (m *Mask) Filter(g *raster.Grid) raster.CellFilter {
	return func(row, col int) bool {
		lat, lon := g.CoordinateOf(row, col)
		return m.Contains(lon, lat)
	}
}
