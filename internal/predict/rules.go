package predict

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/DylanKirbs/BiomeClassification/internal/feature"
	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
	"github.com/DylanKirbs/BiomeClassification/internal/raster"
)

// ClassifyGrid labels every valid cell with the deterministic Köppen rule
// engine. Rule classifications are exact, so the posterior is 1 everywhere a
// label is assigned.
func ClassifyGrid(ctx context.Context, g *raster.Grid, filter raster.CellFilter, workers int) (*Result, error) {
	return scan(ctx, g, filter, workers, raster.ClimateLayers(), "predict.rules",
		func(row, col int) (koppen.Label, float64, bool, error) {
			rec, err := feature.RecordAt(g, row, col)
			if err != nil {
				if eris.Is(err, koppen.ErrInsufficientData) {
					return "", 0, true, nil
				}
				return "", 0, false, err
			}
			return koppen.Classify(rec), 1, false, nil
		})
}
