package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/storesight-labs/storesight/internal/state"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent analysis runs",
		Long:  `List the most recent analysis runs recorded in the run-history database, newest first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			runs, err := cmdCtx.Store.ListRuns(limit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(w, "No runs recorded yet.")
				return nil
			}

			header := table.Row{"Started", "Analysis", "Status", "Rows", "Headline", "Duration"}
			rows := make([]table.Row, len(runs))
			for i, r := range runs {
				headline := "-"
				if r.Headline.Valid {
					headline = fmt.Sprintf("%.4f", r.Headline.Float64)
				}
				duration := "-"
				if r.CompletedAt != nil {
					duration = r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
				}
				rows[i] = table.Row{
					r.StartedAt.Format(time.RFC3339), r.Kind, r.Status,
					r.RowCount, headline, duration,
				}
			}

			payload := struct {
				Runs []*state.AnalysisRun `json:"runs"`
			}{runs}
			return renderRows(w, cmdCtx.Cfg.OutputFormat, header, rows, payload)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")

	return cmd
}
