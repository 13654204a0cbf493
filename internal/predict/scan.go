package predict

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
	"github.com/DylanKirbs/BiomeClassification/internal/raster"
)

// cellFunc classifies one already-validated cell. skip reports a cell whose
// data turned out incomplete; it is left as NODATA rather than failing the
// run.
type cellFunc func(row, col int) (label koppen.Label, posterior float64, skip bool, err error)

// scan drives a classification pass: row-band fan-out across workers, NODATA
// and filter handling, throttled progress logs. Workers write disjoint
// result regions so the pass needs no locking.
func scan(ctx context.Context, g *raster.Grid, filter raster.CellFilter, workers int, required []string, component string, classify cellFunc) (*Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log := zap.L().With(zap.String("component", component))

	for _, name := range required {
		if !g.HasLayer(name) {
			return nil, eris.Wrapf(raster.ErrLayerNotFound, "%q", name)
		}
	}

	result := newResult(g)
	var visited, classified atomic.Int64
	progress := rate.Sometimes{Interval: 5 * time.Second}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for _, band := range raster.PartitionRows(g.Height(), workers) {
		eg.Go(func() error {
			for row := band.Start; row < band.End; row++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				for col := 0; col < g.Width(); col++ {
					visited.Add(1)
					if filter != nil && !filter(row, col) {
						continue
					}
					if !g.CellIsValid(row, col, required...) {
						continue
					}

					label, posterior, skip, err := classify(row, col)
					if err != nil {
						return err
					}
					if skip {
						continue
					}
					result.set(row, col, label, posterior)
					classified.Add(1)

					progress.Do(func() {
						log.Info("classifying grid",
							zap.Int64("cells_visited", visited.Load()),
							zap.Int64("cells_classified", classified.Load()),
						)
					})
				}
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, eris.Wrap(err, "predict: scan")
	}

	log.Info("grid classified",
		zap.Int64("cells_visited", visited.Load()),
		zap.Int64("cells_classified", classified.Load()),
	)
	return result, nil
}
