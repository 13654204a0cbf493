package predict

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/DylanKirbs/BiomeClassification/internal/bayes"
	"github.com/DylanKirbs/BiomeClassification/internal/feature"
	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
	"github.com/DylanKirbs/BiomeClassification/internal/raster"
)

// Predictor runs a fitted Naive Bayes model over raster grids.
type Predictor struct {
	model     *bayes.Model
	extractor feature.Extractor
	workers   int
}

// NewPredictor pairs a model with the extractor that produces its inputs.
// The model must have been fitted on exactly the extractor's feature names.
func NewPredictor(model *bayes.Model, extractor feature.Extractor, workers int) (*Predictor, error) {
	if err := model.CheckFeatures(extractor.Names()); err != nil {
		return nil, err
	}
	return &Predictor{model: model, extractor: extractor, workers: workers}, nil
}

// Run classifies every valid cell of the grid, returning the maximum-
// posterior label and its confidence per cell. The grid is never modified;
// repeated runs over the same inputs give identical results.
func (p *Predictor) Run(ctx context.Context, g *raster.Grid, filter raster.CellFilter) (*Result, error) {
	return scan(ctx, g, filter, p.workers, p.extractor.RequiredLayers(), "predict.bayes",
		func(row, col int) (koppen.Label, float64, bool, error) {
			vec, err := p.extractor.Extract(g, row, col)
			if err != nil {
				if eris.Is(err, koppen.ErrInsufficientData) {
					return "", 0, true, nil
				}
				return "", 0, false, err
			}
			pred, err := p.model.Predict(vec)
			if err != nil {
				return "", 0, false, err
			}
			return pred.Label, pred.Posterior, false, nil
		})
}
