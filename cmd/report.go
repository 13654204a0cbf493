package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DylanKirbs/BiomeClassification/internal/predict"
	"github.com/DylanKirbs/BiomeClassification/internal/report"
)

var reportFlags struct {
	grid string
	out  string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write an XLSX distribution report from a stored label grid",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog(cmd.Context())
		if err != nil {
			return err
		}
		defer cat.Close()

		g, err := cat.Get(cmd.Context(), reportFlags.grid)
		if err != nil {
			return err
		}
		res, err := predict.ResultFromGrid(g)
		if err != nil {
			return err
		}

		if err := report.WriteDistribution(reportFlags.out, res, report.Meta{GridName: reportFlags.grid}); err != nil {
			return err
		}

		zap.L().Info("report written",
			zap.String("grid", reportFlags.grid),
			zap.String("path", reportFlags.out),
			zap.Int64("cells_classified", res.Classified()),
		)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFlags.grid, "grid", "", "stored label grid to report on (required)")
	reportCmd.Flags().StringVar(&reportFlags.out, "out", "report.xlsx", "output XLSX path")
	_ = reportCmd.MarkFlagRequired("grid")
	rootCmd.AddCommand(reportCmd)
}
