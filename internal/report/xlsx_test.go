package report

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/DylanKirbs/BiomeClassification/internal/predict"
	"github.com/DylanKirbs/BiomeClassification/internal/raster"
)

func TestWriteDistribution(t *testing.T) {
	g, err := raster.Demo(6, 10)
	require.NoError(t, err)
	res, err := predict.ClassifyGrid(context.Background(), g, nil, 2)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteDistribution(path, res, Meta{GridName: "demo"}))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	summary, ok := f.Sheet["Summary"]
	require.True(t, ok)
	assert.Equal(t, "Grid", summary.Rows[1].Cells[0].String())
	assert.Equal(t, "demo", summary.Rows[1].Cells[1].String())
	assert.Equal(t, "rule engine", summary.Rows[2].Cells[1].String())

	dist, ok := f.Sheet["Distribution"]
	require.True(t, ok)
	require.Greater(t, len(dist.Rows), 1, "at least one class row")
	assert.Equal(t, "Label", dist.Rows[0].Cells[0].String())

	// Data rows cover every classified cell exactly once.
	counts := res.ClassCounts()
	assert.Len(t, dist.Rows, len(counts)+1)
}
