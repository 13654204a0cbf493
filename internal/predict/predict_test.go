package predict

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DylanKirbs/BiomeClassification/internal/bayes"
	"github.com/DylanKirbs/BiomeClassification/internal/feature"
	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
	"github.com/DylanKirbs/BiomeClassification/internal/raster"
	"github.com/DylanKirbs/BiomeClassification/internal/training"
)

func demoGrid(t *testing.T, w, h int) *raster.Grid {
	t.Helper()
	g, err := raster.Demo(w, h)
	require.NoError(t, err)
	return g
}

func TestClassifyGrid(t *testing.T) {
	g := demoGrid(t, 6, 10)

	res, err := ClassifyGrid(context.Background(), g, nil, 2)
	require.NoError(t, err)

	// First column is NODATA, every other cell classifies.
	assert.EqualValues(t, (g.Width()-1)*g.Height(), res.Classified())
	for row := 0; row < g.Height(); row++ {
		_, _, ok := res.At(row, 0)
		assert.False(t, ok, "NODATA column must stay unclassified")
	}

	label, posterior, ok := res.At(0, 1)
	require.True(t, ok)
	assert.True(t, label.Valid())
	assert.Equal(t, 1.0, posterior, "rule classifications are exact")

	var total int64
	for _, n := range res.ClassCounts() {
		total += n
	}
	assert.Equal(t, res.Classified(), total)
}

func TestClassifyGridIdempotent(t *testing.T) {
	g := demoGrid(t, 5, 8)

	first, err := ClassifyGrid(context.Background(), g, nil, 3)
	require.NoError(t, err)
	second, err := ClassifyGrid(context.Background(), g, nil, 1)
	require.NoError(t, err)

	assert.Equal(t, first.Codes, second.Codes)
}

func TestClassifyGridMissingLayer(t *testing.T) {
	g, err := raster.NewGrid(2, 2, raster.Transform{OriginY: 10, PixelHeight: -1, PixelWidth: 1}, -9999)
	require.NoError(t, err)

	_, err = ClassifyGrid(context.Background(), g, nil, 1)
	assert.ErrorIs(t, err, raster.ErrLayerNotFound)
}

func TestPredictorRun(t *testing.T) {
	g := demoGrid(t, 6, 12)
	ext := feature.NewExtractor(feature.DefaultSchema())

	stats, err := training.NewBuilder(ext, 2).Build(context.Background(), g, nil)
	require.NoError(t, err)
	model, err := bayes.Fit(stats, ext.Names())
	require.NoError(t, err)

	p, err := NewPredictor(model, ext, 2)
	require.NoError(t, err)

	res, err := p.Run(context.Background(), g, nil)
	require.NoError(t, err)

	assert.EqualValues(t, (g.Width()-1)*g.Height(), res.Classified())
	for row := 0; row < g.Height(); row++ {
		for col := 1; col < g.Width(); col++ {
			label, posterior, ok := res.At(row, col)
			require.True(t, ok)
			assert.True(t, label.Valid())
			assert.Greater(t, posterior, 0.0)
			assert.LessOrEqual(t, posterior, 1.0)
		}
	}

	// Same model, same grid: byte-for-byte identical output.
	again, err := p.Run(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Equal(t, res.Codes, again.Codes)
	assert.Equal(t, res.Posteriors, again.Posteriors)
}

func TestNewPredictorRejectsSchemaMismatch(t *testing.T) {
	set := make(training.Set)
	set.Add(koppen.Af, []float64{27})
	stats, err := set.Accumulate(1)
	require.NoError(t, err)

	model, err := bayes.Fit(stats, []string{"tann"})
	require.NoError(t, err)

	_, err = NewPredictor(model, feature.NewExtractor(feature.DefaultSchema()), 1)
	assert.ErrorIs(t, err, bayes.ErrSchemaMismatch)
}

func TestResultToGrid(t *testing.T) {
	g := demoGrid(t, 4, 4)

	res, err := ClassifyGrid(context.Background(), g, nil, 1)
	require.NoError(t, err)

	out, err := res.ToGrid(-9999)
	require.NoError(t, err)

	codes, err := out.Layer(CodeLayer)
	require.NoError(t, err)
	posts, err := out.Layer(PosteriorLayer)
	require.NoError(t, err)

	for row := 0; row < g.Height(); row++ {
		v := codes.At(row, 0)
		assert.True(t, v != v, "NODATA cells export as the sentinel")
	}
	label, _, ok := res.At(1, 2)
	require.True(t, ok)
	assert.Equal(t, float64(label.Code()), codes.At(1, 2))
	assert.Equal(t, 1.0, posts.At(1, 2))

	// Round-trips back into an equivalent result.
	back, err := ResultFromGrid(out)
	require.NoError(t, err)
	assert.Equal(t, res.Codes, back.Codes)
}
