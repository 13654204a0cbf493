package main

import (
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/DylanKirbs/BiomeClassification/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded pipeline runs",
}

var runsListFlags struct {
	kind   string
	status string
	grid   string
	limit  int
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(cmd.Context(), store.RunFilter{
			Kind:     store.RunKind(runsListFlags.kind),
			Status:   store.RunStatus(runsListFlags.status),
			GridName: runsListFlags.grid,
			Limit:    runsListFlags.limit,
		})
		if err != nil {
			return err
		}

		p := message.NewPrinter(language.English)
		p.Fprintf(cmd.OutOrStdout(), "%-36s %-9s %-20s %-9s %-20s %12s\n",
			"id", "kind", "grid", "status", "created", "classified")
		for _, r := range runs {
			var classified int64
			if r.Summary != nil {
				classified = r.Summary.CellsClassified
			}
			p.Fprintf(cmd.OutOrStdout(), "%-36s %-9s %-20s %-9s %-20s %12d\n",
				r.ID, string(r.Kind), r.GridName, string(r.Status),
				time.Unix(r.CreatedAt, 0).UTC().Format(time.RFC3339), classified)
		}
		return nil
	},
}

func init() {
	runsListCmd.Flags().StringVar(&runsListFlags.kind, "kind", "", "filter by kind (classify, train, predict)")
	runsListCmd.Flags().StringVar(&runsListFlags.status, "status", "", "filter by status (running, complete, failed)")
	runsListCmd.Flags().StringVar(&runsListFlags.grid, "grid", "", "filter by grid name")
	runsListCmd.Flags().IntVar(&runsListFlags.limit, "limit", 20, "maximum rows")
	runsCmd.AddCommand(runsListCmd)
	rootCmd.AddCommand(runsCmd)
}
