package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"lifeforge/internal/config"
	"lifeforge/pkg/lifeforge"
)

func (a *app) newRunsCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd, func(ctx context.Context, _ config.Config, client *lifeforge.Client) error {
				runs, err := client.Runs(ctx, lifeforge.RunsRequest{Limit: limit})
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(a.stdout, "no runs")
					return nil
				}
				tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "RUN\tCREATED\tPOPULATION\tEPOCHS\tSEED\tBEST")
				for _, run := range runs {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
						run.ID,
						createdAgo(run.CreatedAtUTC),
						humanize.Comma(int64(run.PopulationSize)),
						run.Epochs,
						run.Seed,
						humanize.CommafWithDigits(run.FinalBestScore, 3),
					)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most N runs (0 shows all)")
	return cmd
}

func (a *app) newHistoryCommand() *cobra.Command {
	var (
		runID  string
		latest bool
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print per-epoch diagnostics of a run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd, func(ctx context.Context, _ config.Config, client *lifeforge.Client) error {
				history, err := client.History(ctx, lifeforge.HistoryRequest{RunID: runID, Latest: latest, Limit: limit})
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "EPOCH\tP\tC\tM\tR\tMEAN\tBEST\tLIVE")
				for _, d := range history {
					fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%.3f\t%.3f\t%d\n",
						d.Epoch, d.Pick, d.Crossover, d.Mutate, d.Random, d.MeanScore, d.BestScore, d.BestLiveCells)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&runID, "run-id", "", "run id")
	cmd.Flags().BoolVar(&latest, "latest", false, "use the most recent run")
	cmd.Flags().IntVar(&limit, "limit", 0, "show the last N epochs (0 shows all)")
	return cmd
}

func (a *app) newExportCommand() *cobra.Command {
	var (
		runID  string
		latest bool
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy a run's artifacts to an export directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd, func(ctx context.Context, _ config.Config, client *lifeforge.Client) error {
				exported, err := client.Export(ctx, lifeforge.ExportRequest{RunID: runID, Latest: latest, OutDir: outDir})
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "exported run_id=%s dir=%s\n", exported.RunID, exported.Directory)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&runID, "run-id", "", "run id")
	cmd.Flags().BoolVar(&latest, "latest", false, "use the most recent run")
	cmd.Flags().StringVar(&outDir, "out", "exports", "export directory")
	return cmd
}

func createdAgo(createdAtUTC string) string {
	created, err := time.Parse(time.RFC3339, createdAtUTC)
	if err != nil {
		return createdAtUTC
	}
	return humanize.Time(created)
}
