package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"studentperf/db"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent predictions (requires history.enabled)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.config.History.Enabled {
				return errors.New("prediction history is disabled; set history.enabled or STUDENTPERF_HISTORY_ENABLED")
			}
			history, err := db.OpenPredictionHistory(a.config.History.Path)
			if err != nil {
				return err
			}
			defer history.Close()

			predictions, err := history.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			counts, err := history.CountByLabel(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range predictions {
				fmt.Fprintf(out, "%-6d %-16s %-8s %3.0f%%  %s\n",
					p.ID, humanize.Time(p.CreatedAt), p.Label, p.Confidence*100, p.RequestID)
			}

			labels := make([]string, 0, len(counts))
			for label := range counts {
				labels = append(labels, label)
			}
			sort.Strings(labels)
			fmt.Fprintln(out)
			for _, label := range labels {
				fmt.Fprintf(out, "%s: %d\n", label, counts[label])
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of predictions to show")
	return cmd
}
