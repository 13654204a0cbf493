package training

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/DylanKirbs/BiomeClassification/internal/feature"
	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
	"github.com/DylanKirbs/BiomeClassification/internal/raster"
)

// Builder produces per-label feature statistics from a raster grid by
// classifying each valid cell with the Köppen rule engine and extracting its
// feature vector from the same cell. Cells are partitioned by row range
// across workers; each worker keeps private accumulators that are merged at
// the end, so no locking happens on the hot path.
type Builder struct {
	extractor feature.Extractor
	workers   int
}

// NewBuilder creates a builder. workers <= 0 means runtime.NumCPU().
func NewBuilder(extractor feature.Extractor, workers int) *Builder {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Builder{extractor: extractor, workers: workers}
}

// Build scans the grid and returns the accumulated statistics. Cells failing
// the filter, holding NODATA, or lacking a complete monthly record are
// skipped; every surviving cell contributes exactly one example, labeled and
// featurized from the identical cell values.
func (b *Builder) Build(ctx context.Context, g *raster.Grid, filter raster.CellFilter) (Stats, error) {
	log := zap.L().With(zap.String("component", "training.builder"))
	required := b.extractor.RequiredLayers()

	// Fail fast on structurally missing layers instead of once per cell.
	for _, name := range required {
		if !g.HasLayer(name) {
			return nil, eris.Wrapf(raster.ErrLayerNotFound, "%q", name)
		}
	}

	var visited, used atomic.Int64
	progress := rate.Sometimes{Interval: 5 * time.Second}

	parts := raster.PartitionRows(g.Height(), b.workers)
	results := make([]Stats, len(parts))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(b.workers)

	for i, p := range parts {
		eg.Go(func() error {
			local := make(Stats)
			for row := p.Start; row < p.End; row++ {
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

					rec, err := feature.RecordAt(g, row, col)
					if err != nil {
						if eris.Is(err, koppen.ErrInsufficientData) {
							continue
						}
						return err
					}
					label := koppen.Classify(rec)

					extra, err := b.extractor.PassthroughAt(g, row, col)
					if err != nil {
						if eris.Is(err, koppen.ErrInsufficientData) {
							continue
						}
						return err
					}
					vec := b.extractor.FromRecord(rec, extra)

					acc, ok := local[label]
					if !ok {
						acc = NewAccumulator(b.extractor.Dim())
						local[label] = acc
					}
					if err := acc.Add(vec); err != nil {
						return err
					}
					used.Add(1)

					progress.Do(func() {
						log.Info("building training set",
							zap.Int64("cells_visited", visited.Load()),
							zap.Int64("examples", used.Load()),
						)
					})
				}
			}
			results[i] = local
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, eris.Wrap(err, "training: build")
	}

	stats := make(Stats)
	for _, local := range results {
		if local == nil {
			continue
		}
		if err := MergeStats(stats, local); err != nil {
			return nil, err
		}
	}

	log.Info("training set built",
		zap.Int64("cells_visited", visited.Load()),
		zap.Int64("examples", used.Load()),
		zap.Int("classes", len(stats)),
	)
	return stats, nil
}
