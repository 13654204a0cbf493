package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DylanKirbs/BiomeClassification/internal/bayes"
	"github.com/DylanKirbs/BiomeClassification/internal/feature"
	"github.com/DylanKirbs/BiomeClassification/internal/predict"
	"github.com/DylanKirbs/BiomeClassification/internal/report"
	"github.com/DylanKirbs/BiomeClassification/internal/store"
)

var predictFlags struct {
	grid    string
	model   string
	out     string
	schema  string
	region  string
	report  string
	workers int
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run a trained model over a raster grid",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cat, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer cat.Close()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		schema, err := loadSchema(predictFlags.schema)
		if err != nil {
			return err
		}
		ext := feature.NewExtractor(schema)

		model, err := bayes.Load(predictFlags.model)
		if err != nil {
			return err
		}

		workers := predictFlags.workers
		if workers == 0 {
			workers = cfg.Predict.Workers
		}
		p, err := predict.NewPredictor(model, ext, workers)
		if err != nil {
			return err
		}

		g, err := cat.Get(ctx, predictFlags.grid)
		if err != nil {
			return err
		}
		filter, err := regionFilter(predictFlags.region, g)
		if err != nil {
			return err
		}

		run, err := st.CreateRun(ctx, store.RunPredict, predictFlags.grid)
		if err != nil {
			return err
		}

		res, err := p.Run(ctx, g, filter)
		if err != nil {
			finishRun(ctx, st, run.ID, nil, err)
			return err
		}

		out := predictFlags.out
		if out == "" {
			out = predictFlags.grid + "_predicted"
		}
		labelGrid, err := res.ToGrid(cfg.Predict.NoData)
		if err != nil {
			finishRun(ctx, st, run.ID, nil, err)
			return err
		}
		if err := cat.Put(ctx, out, labelGrid); err != nil {
			finishRun(ctx, st, run.ID, nil, err)
			return err
		}

		if predictFlags.report != "" {
			meta := report.Meta{GridName: predictFlags.grid, ModelPath: predictFlags.model}
			if err := report.WriteDistribution(predictFlags.report, res, meta); err != nil {
				finishRun(ctx, st, run.ID, nil, err)
				return err
			}
		}

		finishRun(ctx, st, run.ID, &store.RunSummary{
			CellsVisited:    int64(g.Cells()),
			CellsClassified: res.Classified(),
			ClassCounts:     res.ClassCounts(),
			ModelPath:       predictFlags.model,
		}, nil)

		zap.L().Info("prediction complete",
			zap.String("grid", predictFlags.grid),
			zap.String("model", predictFlags.model),
			zap.String("output", out),
			zap.Int64("cells_classified", res.Classified()),
		)
		return nil
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictFlags.grid, "grid", "", "catalog grid to classify (required)")
	predictCmd.Flags().StringVar(&predictFlags.model, "model", "model.json", "trained model path")
	predictCmd.Flags().StringVar(&predictFlags.out, "out", "", "output grid name (default <grid>_predicted)")
	predictCmd.Flags().StringVar(&predictFlags.schema, "schema", "", "feature schema YAML (default from config)")
	predictCmd.Flags().StringVar(&predictFlags.region, "region", "", "polygon shapefile restricting the run")
	predictCmd.Flags().StringVar(&predictFlags.report, "report", "", "write an XLSX distribution report to this path")
	predictCmd.Flags().IntVar(&predictFlags.workers, "workers", 0, "worker count (default from config, then NumCPU)")
	_ = predictCmd.MarkFlagRequired("grid")
	rootCmd.AddCommand(predictCmd)
}
