package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DylanKirbs/BiomeClassification/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "biome",
	Short: "Köppen-Geiger biome classification pipeline",
	Long:  "Classifies climate raster grids into Köppen-Geiger biomes with a deterministic rule engine, and trains Gaussian Naive Bayes models from those labels for probabilistic inference.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
