package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/DylanKirbs/BiomeClassification/internal/bayes"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect trained models",
}

var modelInspectFlags struct {
	model string
}

var modelInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print a trained model's classes and parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := bayes.Load(modelInspectFlags.model)
		if err != nil {
			return err
		}

		p := message.NewPrinter(language.English)
		p.Fprintf(cmd.OutOrStdout(), "model: %s\n", modelInspectFlags.model)
		p.Fprintf(cmd.OutOrStdout(), "features: %v\n\n", m.Features())
		var total int64
		for _, label := range m.Labels() {
			c, _ := m.Class(label)
			total += c.Count
		}

		p.Fprintf(cmd.OutOrStdout(), "%-6s %10s %10s\n", "class", "examples", "share")
		for _, label := range m.Labels() {
			c, _ := m.Class(label)
			p.Fprintf(cmd.OutOrStdout(), "%-6s %10d %10.4f\n", string(label), c.Count, float64(c.Count)/float64(total))
		}
		return nil
	},
}

func init() {
	modelInspectCmd.Flags().StringVar(&modelInspectFlags.model, "model", "model.json", "trained model path")
	modelCmd.AddCommand(modelInspectCmd)
	rootCmd.AddCommand(modelCmd)
}
