package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/snow-ghost/dosage/report"
	"github.com/snow-ghost/dosage/worker"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent runs from the history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			runStore, err := worker.OpenStore(dbPath)
			if err != nil {
				return err
			}
			defer runStore.Close()

			runs, err := runStore.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tSEED\tGENERATIONS\tDOSE A\tDOSE B\tDOSE C\tFITNESS")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%v\t%v\t%v\t%v\n",
					r.ID,
					r.CreatedAt.Format("2006-01-02 15:04:05"),
					r.Seed,
					r.Generations,
					report.Round2(r.Best.A()),
					report.Round2(r.Best.B()),
					report.Round2(r.Best.C()),
					report.Round2(r.BestFitness),
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")
	return cmd
}
