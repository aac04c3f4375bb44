package cmd

import (
	"time"

	"storefront-e2e/cmd/e2e/utils"
	"storefront-e2e/lib/report"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	historyCount   int
	historyResults bool
)

func init() {
	historyCmd.Flags().IntVarP(&historyCount, "runs", "n", 10, "number of runs to show")
	historyCmd.Flags().BoolVar(&historyResults, "results", false, "list every scenario result of the runs")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [-n <runs>] [--results]",
	Short: "Shows the most recent recorded runs.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		h, err := report.OpenHistory(cfg.Resolve(cfg.Report.HistoryDB))
		if err != nil {
			return err
		}
		defer h.Close()

		t := utils.NewTable(cmd.OutOrStdout())
		if historyResults {
			entries, err := h.Recent(cmd.Context(), historyCount)
			if err != nil {
				return err
			}
			t.AppendHeader(table.Row{"Run", "Started", "Suite", "Scenario", "Status", "Attempts", "Duration", "Error"})
			for _, e := range entries {
				t.AppendRow(table.Row{
					e.RunID,
					e.RunStarted.Format(time.DateTime),
					e.Suite,
					e.Title,
					e.Status,
					e.Attempts,
					e.Duration.Round(time.Millisecond),
					e.Err,
				})
			}
			t.Render()
			return nil
		}

		runs, err := h.Runs(cmd.Context(), historyCount)
		if err != nil {
			return err
		}
		t.AppendHeader(table.Row{"Run", "Started", "Total", "Passed", "Failed", "Skipped", "Duration"})
		for _, run := range runs {
			t.AppendRow(table.Row{
				run.ID,
				run.Started.Format(time.DateTime),
				run.Summary.Total,
				run.Summary.Passed,
				run.Summary.Failed,
				run.Summary.Skipped,
				run.Summary.Duration.Round(time.Second),
			})
		}
		t.Render()
		return nil
	},
}
