package evo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"lifeforge/internal/life"
	"lifeforge/internal/model"
)

// Config collects every tunable of a search.
type Config struct {
	GridSize       int
	PopulationSize int
	Epochs         int
	Workers        int
	Seed           int64
	Chances        Chances
	Schedule       *life.Schedule
}

func DefaultConfig() Config {
	return Config{
		GridSize:       8,
		PopulationSize: 1000,
		Epochs:         100,
		Workers:        4,
		Seed:           1,
		Chances:        DefaultChances(),
		Schedule:       life.DefaultSchedule(),
	}
}

func (c Config) Validate() error {
	if c.GridSize <= 0 {
		return fmt.Errorf("grid size must be > 0")
	}
	if c.PopulationSize <= 0 {
		return fmt.Errorf("population size must be > 0")
	}
	if c.Epochs < 0 {
		return fmt.Errorf("epochs must be >= 0")
	}
	if c.Schedule == nil {
		return fmt.Errorf("score schedule is required")
	}
	if err := c.Schedule.Validate(); err != nil {
		return err
	}
	return c.Chances.Validate()
}

// EpochObserver is called after every epoch, including epoch 0 for the seed
// population. Returning an error stops the run.
type EpochObserver func(ctx context.Context, diag model.EpochDiagnostics, gen *Generation) error

type RunnerOptions struct {
	RunID   string
	Logger  *slog.Logger
	Metrics *Metrics
	OnEpoch EpochObserver
}

// Runner drives a Generation through a fixed number of epochs.
type Runner struct {
	cfg     Config
	rng     *rand.Rand
	runID   string
	logger  *slog.Logger
	metrics *Metrics
	onEpoch EpochObserver
}

type RunResult struct {
	Diagnostics []model.EpochDiagnostics
	BestByEpoch []float64
	Final       *Generation
}

func NewRunner(cfg Config, opts RunnerOptions) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.RunID != "" {
		logger = logger.With("run_id", opts.RunID)
	}
	return &Runner{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		runID:   opts.RunID,
		logger:  logger,
		metrics: opts.Metrics,
		onEpoch: opts.OnEpoch,
	}, nil
}

// Seed builds the initial population from the runner's random source.
func (r *Runner) Seed() (*Generation, error) {
	gen, err := Build(r.rng, r.cfg.GridSize, r.cfg.PopulationSize, r.cfg.Schedule)
	if err != nil {
		return nil, err
	}
	return gen.WithWorkers(r.cfg.Workers), nil
}

// Run scores initial and advances it Config.Epochs times. A nil initial
// population is seeded with Seed.
func (r *Runner) Run(ctx context.Context, initial *Generation) (RunResult, error) {
	gen := initial
	if gen == nil {
		var err error
		if gen, err = r.Seed(); err != nil {
			return RunResult{}, err
		}
	}
	gen = gen.WithWorkers(r.cfg.Workers)

	start := time.Now()
	r.logger.Info("warming population", "population", gen.Len(), "workers", r.cfg.Workers)
	if err := gen.Warm(ctx); err != nil {
		return RunResult{}, err
	}

	result := RunResult{
		Diagnostics: make([]model.EpochDiagnostics, 0, r.cfg.Epochs+1),
		BestByEpoch: make([]float64, 0, r.cfg.Epochs+1),
	}
	if err := r.record(ctx, &result, 0, gen, nil, time.Since(start)); err != nil {
		return RunResult{}, err
	}

	for epoch := 1; epoch <= r.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		start := time.Now()
		next, counts, err := gen.BuildNextGeneration(ctx, r.rng, r.cfg.Chances)
		if err != nil {
			return RunResult{}, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		gen = next
		if err := r.record(ctx, &result, epoch, gen, counts, time.Since(start)); err != nil {
			return RunResult{}, err
		}
	}

	result.Final = gen
	return result, nil
}

func (r *Runner) record(ctx context.Context, result *RunResult, epoch int, gen *Generation, counts OffspringCounts, elapsed time.Duration) error {
	best := gen.BestBoard()
	diag := model.EpochDiagnostics{
		Epoch:         epoch,
		MeanScore:     gen.MeanScore(),
		BestScore:     best.Score(),
		MinScore:      gen.MinScore(),
		BestLiveCells: best.Len(),
		DurationMS:    elapsed.Milliseconds(),
	}
	if counts != nil {
		diag.Pick = counts[OffspringPick]
		diag.Mutate = counts[OffspringMutate]
		diag.Crossover = counts[OffspringCrossover]
		diag.Random = counts[OffspringRandom]
		r.metrics.Observe(counts, diag.MeanScore, diag.BestScore, diag.BestLiveCells, elapsed)
	}

	result.Diagnostics = append(result.Diagnostics, diag)
	result.BestByEpoch = append(result.BestByEpoch, diag.BestScore)

	r.logger.Info("epoch complete",
		"epoch", epoch,
		"pick", diag.Pick,
		"crossover", diag.Crossover,
		"mutate", diag.Mutate,
		"random", diag.Random,
		"mean_score", diag.MeanScore,
		"best_score", diag.BestScore,
		"duration", elapsed,
	)

	if r.onEpoch != nil {
		if err := r.onEpoch(ctx, diag, gen); err != nil {
			return fmt.Errorf("epoch %d observer: %w", epoch, err)
		}
	}
	return nil
}
