package feature

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
	"github.com/DylanKirbs/BiomeClassification/internal/raster"
)

// climateGrid builds a 2x1 grid with constant monthly climate in cell (0,0)
// and a missing July temperature in cell (0,1).
func climateGrid(t *testing.T) *raster.Grid {
	t.Helper()
	g, err := raster.NewGrid(2, 1, raster.Transform{OriginY: 40, PixelHeight: -1, PixelWidth: 1}, -9999)
	require.NoError(t, err)

	for m := 1; m <= 12; m++ {
		tavg := []float64{20, 20}
		if m == 7 {
			tavg[1] = -9999
		}
		require.NoError(t, g.AddLayer(raster.TavgLayer(m), tavg))
	}
	for m := 1; m <= 12; m++ {
		require.NoError(t, g.AddLayer(raster.PrecLayer(m), []float64{50, 50}))
	}
	require.NoError(t, g.AddLayer(raster.ElevationLayer, []float64{123, 456}))
	return g
}

func TestExtract(t *testing.T) {
	g := climateGrid(t)
	e := NewExtractor(DefaultSchema())

	vec, err := e.Extract(g, 0, 0)
	require.NoError(t, err)
	require.Len(t, vec, e.Dim())

	// Derived aggregates must match the classifier's own summary.
	rec, err := RecordAt(g, 0, 0)
	require.NoError(t, err)
	s := koppen.Summarize(rec)

	assert.Equal(t, s.Tann, vec[0])
	assert.Equal(t, s.Pann, vec[1])
	assert.Equal(t, s.Tmax, vec[2])
	assert.Equal(t, s.Tmin, vec[3])
	assert.Equal(t, s.Tmax-s.Tmin, vec[4])
	assert.InDelta(t, 0.5, vec[5], 1e-12, "uniform precipitation splits evenly")
	assert.Equal(t, s.Pmin, vec[6])
	assert.Equal(t, 123.0, vec[7], "elevation passthrough")
}

func TestExtractMissingMonth(t *testing.T) {
	g := climateGrid(t)
	e := NewExtractor(DefaultSchema())

	_, err := e.Extract(g, 0, 1)
	assert.ErrorIs(t, err, koppen.ErrInsufficientData)
}

func TestExtractMissingPassthroughLayer(t *testing.T) {
	g := climateGrid(t)
	e := NewExtractor(Schema{Passthrough: []string{"bio_01"}})

	_, err := e.Extract(g, 0, 0)
	assert.ErrorIs(t, err, raster.ErrLayerNotFound)
}

func TestSchemaNamesStable(t *testing.T) {
	s := Schema{Passthrough: []string{"elev", "bio_04"}}
	names := s.Names()
	assert.Equal(t, s.Dim(), len(names))
	assert.Equal(t, "tann", names[0])
	assert.Equal(t, "bio_04", names[len(names)-1])
}

func TestSummerRatioZeroPrecipitation(t *testing.T) {
	var rec koppen.Record
	for m := 0; m < 12; m++ {
		rec.Temp[m] = 20
	}
	e := NewExtractor(Schema{})
	vec := e.FromRecord(rec, nil)
	assert.False(t, math.IsNaN(vec[5]), "zero annual precipitation must not divide by zero")
}

func TestLoadSchema(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "schema.yaml")
		require.NoError(t, os.WriteFile(path, []byte("passthrough_layers:\n  - elev\n  - bio_04\n"), 0o644))

		s, err := LoadSchema(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"elev", "bio_04"}, s.Passthrough)
	})

	t.Run("duplicate layer", func(t *testing.T) {
		path := filepath.Join(dir, "dup.yaml")
		require.NoError(t, os.WriteFile(path, []byte("passthrough_layers: [elev, elev]\n"), 0o644))

		_, err := LoadSchema(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSchema(filepath.Join(dir, "absent.yaml"))
		assert.Error(t, err)
	})
}
