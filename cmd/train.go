package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DylanKirbs/BiomeClassification/internal/bayes"
	"github.com/DylanKirbs/BiomeClassification/internal/feature"
	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
	"github.com/DylanKirbs/BiomeClassification/internal/store"
	"github.com/DylanKirbs/BiomeClassification/internal/training"
)

var trainFlags struct {
	grid    string
	model   string
	schema  string
	region  string
	workers int
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit a Gaussian Naive Bayes model from rule-engine labels",
	Long:  "Classifies every valid cell of the grid with the Köppen rule engine, pairs each label with the cell's feature vector, and fits per-class Gaussian parameters from the streamed statistics.",
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

		schema, err := loadSchema(trainFlags.schema)
		if err != nil {
			return err
		}
		ext := feature.NewExtractor(schema)

		g, err := cat.Get(ctx, trainFlags.grid)
		if err != nil {
			return err
		}
		filter, err := regionFilter(trainFlags.region, g)
		if err != nil {
			return err
		}

		workers := trainFlags.workers
		if workers == 0 {
			workers = cfg.Train.Workers
		}

		run, err := st.CreateRun(ctx, store.RunTrain, trainFlags.grid)
		if err != nil {
			return err
		}

		stats, err := training.NewBuilder(ext, workers).Build(ctx, g, filter)
		if err != nil {
			finishRun(ctx, st, run.ID, nil, err)
			return err
		}

		model, err := bayes.Fit(stats, ext.Names())
		if err != nil {
			finishRun(ctx, st, run.ID, nil, err)
			return err
		}
		if err := model.Save(trainFlags.model); err != nil {
			finishRun(ctx, st, run.ID, nil, err)
			return err
		}

		var examples int64
		counts := make(map[koppen.Label]int64, len(stats))
		for label, acc := range stats {
			examples += acc.Count()
			counts[label] = acc.Count()
		}
		finishRun(ctx, st, run.ID, &store.RunSummary{
			CellsVisited:    int64(g.Cells()),
			CellsClassified: examples,
			ClassCounts:     counts,
			ModelPath:       trainFlags.model,
		}, nil)

		zap.L().Info("model trained",
			zap.String("grid", trainFlags.grid),
			zap.String("model", trainFlags.model),
			zap.Int64("examples", examples),
			zap.Int("classes", len(stats)),
			zap.Strings("features", ext.Names()),
		)
		return nil
	},
}

func init() {
	trainCmd.Flags().StringVar(&trainFlags.grid, "grid", "", "catalog grid to train on (required)")
	trainCmd.Flags().StringVar(&trainFlags.model, "model", "model.json", "output model path")
	trainCmd.Flags().StringVar(&trainFlags.schema, "schema", "", "feature schema YAML (default from config)")
	trainCmd.Flags().StringVar(&trainFlags.region, "region", "", "polygon shapefile restricting the run")
	trainCmd.Flags().IntVar(&trainFlags.workers, "workers", 0, "worker count (default from config, then NumCPU)")
	_ = trainCmd.MarkFlagRequired("grid")
	rootCmd.AddCommand(trainCmd)
}
