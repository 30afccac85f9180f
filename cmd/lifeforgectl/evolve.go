package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"lifeforge/internal/config"
	"lifeforge/internal/evo"
	"lifeforge/internal/life"
	"lifeforge/internal/model"
	"lifeforge/pkg/lifeforge"
)

type evolveFlags struct {
	gridSize      int
	population    int
	epochs        int
	workers       int
	seed          int64
	mutation      float64
	crossover     float64
	random        float64
	horizon       int
	snapshotEvery int
	continueFrom  string
	metricsFile   string
	out           string
	runID         string
}

func (a *app) newEvolveCommand() *cobra.Command {
	var f evolveFlags
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "evolve",
		Short: "Search for boards whose live population stays large",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			applyEvolveFlags(cmd, &cfg, f)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return a.evolve(cmd.Context(), cfg, f.runID)
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.gridSize, "grid-size", defaults.Evolution.GridSize, "side of the square region random boards are drawn in")
	fl.IntVar(&f.population, "population", defaults.Evolution.PopulationSize, "boards per generation")
	fl.IntVar(&f.epochs, "epochs", defaults.Evolution.Epochs, "generations to breed")
	fl.IntVar(&f.workers, "workers", defaults.Evolution.Workers, "parallel scoring workers")
	fl.Int64Var(&f.seed, "seed", defaults.Evolution.Seed, "random seed")
	fl.Float64Var(&f.mutation, "mutation", defaults.Evolution.Chances.Mutation, "mutation chance")
	fl.Float64Var(&f.crossover, "crossover", defaults.Evolution.Chances.Crossover, "crossover chance")
	fl.Float64Var(&f.random, "random", defaults.Evolution.Chances.Random, "random board chance")
	fl.IntVar(&f.horizon, "horizon", defaults.Evolution.Horizon, "simulated steps behind a score")
	fl.IntVar(&f.snapshotEvery, "snapshot-every", defaults.Output.SnapshotEvery, "persist the population every N epochs (0 disables)")
	fl.StringVar(&f.continueFrom, "continue-from", "", "population snapshot id to resume from")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after each epoch")
	fl.StringVar(&f.out, "out", defaults.Output.BestBoardPath, "best board document path")
	fl.StringVar(&f.runID, "run-id", "", "explicit run id")
	return cmd
}

func applyEvolveFlags(cmd *cobra.Command, cfg *config.Config, f evolveFlags) {
	fl := cmd.Flags()
	e := &cfg.Evolution
	if fl.Changed("grid-size") {
		e.GridSize = f.gridSize
	}
	if fl.Changed("population") {
		e.PopulationSize = f.population
	}
	if fl.Changed("epochs") {
		e.Epochs = f.epochs
	}
	if fl.Changed("workers") {
		e.Workers = f.workers
	}
	if fl.Changed("seed") {
		e.Seed = f.seed
	}
	if fl.Changed("mutation") {
		e.Chances.Mutation = f.mutation
	}
	if fl.Changed("crossover") {
		e.Chances.Crossover = f.crossover
	}
	if fl.Changed("random") {
		e.Chances.Random = f.random
	}
	if fl.Changed("horizon") {
		e.Horizon = f.horizon
		e.ScoreWeights = nil
	}
	if fl.Changed("snapshot-every") {
		cfg.Output.SnapshotEvery = f.snapshotEvery
	}
	if fl.Changed("continue-from") {
		cfg.Output.ContinueFromPop = f.continueFrom
	}
	if fl.Changed("metrics-file") {
		cfg.Output.MetricsFile = f.metricsFile
	}
	if fl.Changed("out") {
		cfg.Output.BestBoardPath = f.out
	}
}

func (a *app) evolve(ctx context.Context, cfg config.Config, runID string) error {
	client, err := a.newClient(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	req := lifeforge.RunRequest{
		RunID:                runID,
		Evolution:            cfg.Evolution,
		SnapshotEvery:        cfg.Output.SnapshotEvery,
		ContinuePopulationID: cfg.Output.ContinueFromPop,
	}
	if path := cfg.Output.MetricsFile; path != "" {
		reg := prometheus.NewRegistry()
		metrics, err := evo.NewMetrics(reg)
		if err != nil {
			return err
		}
		req.Metrics = metrics
		req.OnEpoch = func(model.EpochDiagnostics) error {
			return prometheus.WriteToTextfile(path, reg)
		}
	}

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	if cfg.Output.BestBoardPath != "" {
		if err := life.WriteDocumentFile(cfg.Output.BestBoardPath, summary.BestBoard); err != nil {
			return err
		}
	}

	fmt.Fprintf(a.stdout, "run_id=%s\n", summary.RunID)
	fmt.Fprintf(a.stdout, "boards=%s epochs=%d elapsed=%s\n",
		humanize.Comma(int64(cfg.Evolution.PopulationSize)), len(summary.BestByEpoch)-1, summary.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(a.stdout, "best_score=%s mean_score=%s live_cells=%d\n",
		humanize.CommafWithDigits(summary.FinalBestScore, 3),
		humanize.CommafWithDigits(summary.FinalMeanScore, 3),
		summary.BestBoard.Len())
	fmt.Fprintf(a.stdout, "artifacts=%s\n", summary.ArtifactsDir)
	if cfg.Output.BestBoardPath != "" {
		fmt.Fprintf(a.stdout, "best_board=%s\n", cfg.Output.BestBoardPath)
	}
	fmt.Fprint(a.stdout, summary.BestBoard.Normalize().String())
	return nil
}
