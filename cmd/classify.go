package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DylanKirbs/BiomeClassification/internal/predict"
	"github.com/DylanKirbs/BiomeClassification/internal/report"
	"github.com/DylanKirbs/BiomeClassification/internal/store"
)

var classifyFlags struct {
	grid    string
	out     string
	region  string
	report  string
	workers int
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Label a raster grid with the Köppen-Geiger rule engine",
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

		g, err := cat.Get(ctx, classifyFlags.grid)
		if err != nil {
			return err
		}
		filter, err := regionFilter(classifyFlags.region, g)
		if err != nil {
			return err
		}

		run, err := st.CreateRun(ctx, store.RunClassify, classifyFlags.grid)
		if err != nil {
			return err
		}

		res, err := predict.ClassifyGrid(ctx, g, filter, classifyFlags.workers)
		if err != nil {
			finishRun(ctx, st, run.ID, nil, err)
			return err
		}

		out := classifyFlags.out
		if out == "" {
			out = classifyFlags.grid + "_koppen"
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

		if classifyFlags.report != "" {
			if err := report.WriteDistribution(classifyFlags.report, res, report.Meta{GridName: classifyFlags.grid}); err != nil {
				finishRun(ctx, st, run.ID, nil, err)
				return err
			}
		}

		finishRun(ctx, st, run.ID, &store.RunSummary{
			CellsVisited:    int64(g.Cells()),
			CellsClassified: res.Classified(),
			ClassCounts:     res.ClassCounts(),
		}, nil)

		zap.L().Info("classification complete",
			zap.String("grid", classifyFlags.grid),
			zap.String("output", out),
			zap.Int64("cells_classified", res.Classified()),
			zap.Int("classes", len(res.ClassCounts())),
		)
		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyFlags.grid, "grid", "", "catalog grid to classify (required)")
	classifyCmd.Flags().StringVar(&classifyFlags.out, "out", "", "output grid name (default <grid>_koppen)")
	classifyCmd.Flags().StringVar(&classifyFlags.region, "region", "", "polygon shapefile restricting the run")
	classifyCmd.Flags().StringVar(&classifyFlags.report, "report", "", "write an XLSX distribution report to this path")
	classifyCmd.Flags().IntVar(&classifyFlags.workers, "workers", 0, "worker count (default NumCPU)")
	_ = classifyCmd.MarkFlagRequired("grid")
	rootCmd.AddCommand(classifyCmd)
}
