package evo

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeforge/internal/life"
	"lifeforge/internal/model"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.GridSize = 5
	cfg.PopulationSize = 16
	cfg.Epochs = 3
	cfg.Workers = 2
	cfg.Seed = 9
	cfg.Schedule = life.NewSchedule(10)
	cfg.Chances = Chances{Mutation: 0.2, Crossover: 0.3, Random: 0.1}
	return cfg
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := smallConfig()
	cfg.PopulationSize = 0
	require.Error(t, cfg.Validate())

	cfg = smallConfig()
	cfg.Chances = Chances{Random: 2}
	require.Error(t, cfg.Validate())

	cfg = smallConfig()
	cfg.Schedule = &life.Schedule{Horizon: 2}
	require.Error(t, cfg.Validate())
}

func TestRunnerRecordsEveryEpoch(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	var observed []int
	runner, err := NewRunner(smallConfig(), RunnerOptions{
		RunID:   "run-1",
		Logger:  logger,
		Metrics: metrics,
		OnEpoch: func(_ context.Context, diag model.EpochDiagnostics, gen *Generation) error {
			observed = append(observed, diag.Epoch)
			require.Equal(t, 16, gen.Len())
			return nil
		},
	})
	require.NoError(t, err)

	result, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3}, observed)
	require.Len(t, result.Diagnostics, 4)
	require.Len(t, result.BestByEpoch, 4)
	require.NotNil(t, result.Final)

	for _, diag := range result.Diagnostics[1:] {
		assert.Equal(t, 16, diag.Pick+diag.Mutate+diag.Crossover+diag.Random)
		assert.GreaterOrEqual(t, diag.BestScore, diag.MeanScore)
		assert.GreaterOrEqual(t, diag.MeanScore, diag.MinScore)
	}
	assert.Equal(t, result.Final.BestScore(), result.BestByEpoch[3])

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Epochs))
	assert.Equal(t, result.BestByEpoch[3], testutil.ToFloat64(metrics.BestScore))
	total := 0.0
	for _, kind := range OffspringTypes() {
		total += testutil.ToFloat64(metrics.Offspring.WithLabelValues(kind.String()))
	}
	assert.Equal(t, 48.0, total)

	assert.Equal(t, 4, strings.Count(logs.String(), `"msg":"epoch complete"`))
	assert.Contains(t, logs.String(), `"run_id":"run-1"`)
}

func TestRunnerIsReproducible(t *testing.T) {
	run := func() []float64 {
		runner, err := NewRunner(smallConfig(), RunnerOptions{})
		require.NoError(t, err)
		result, err := runner.Run(context.Background(), nil)
		require.NoError(t, err)
		return result.BestByEpoch
	}
	require.Equal(t, run(), run())
}

func TestRunnerObserverErrorStops(t *testing.T) {
	calls := 0
	runner, err := NewRunner(smallConfig(), RunnerOptions{
		OnEpoch: func(_ context.Context, diag model.EpochDiagnostics, _ *Generation) error {
			calls++
			if diag.Epoch == 1 {
				return errors.New("disk full")
			}
			return nil
		},
	})
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), nil)
	require.ErrorContains(t, err, "disk full")
	require.Equal(t, 2, calls)
}

func TestRunnerContinuesFromPopulation(t *testing.T) {
	cfg := smallConfig()
	cfg.Epochs = 1
	runner, err := NewRunner(cfg, RunnerOptions{})
	require.NoError(t, err)

	block := life.FromCells([]life.Cell{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 1}}, cfg.Schedule)
	initial, err := FromBoards([]*life.Board{block, block.Copy(), block.Copy()}, cfg.GridSize, cfg.Schedule)
	require.NoError(t, err)

	result, err := runner.Run(context.Background(), initial)
	require.NoError(t, err)
	require.Equal(t, 3, result.Final.Len())
	require.InDelta(t, 4.0, result.BestByEpoch[0], 1e-9)
	require.Equal(t, 1, initial.workers)
	require.Equal(t, 3, initial.Len())
}

func TestWithWorkersLeavesReceiver(t *testing.T) {
	initial, err := FromBoards([]*life.Board{life.NewBoard(nil)}, 4, nil)
	require.NoError(t, err)

	tuned := initial.WithWorkers(6)
	require.Equal(t, 6, tuned.workers)
	require.Equal(t, 1, initial.workers)
	require.Equal(t, 1, initial.WithWorkers(0).workers)
}

func TestMetricsObserveNilReceiver(t *testing.T) {
	var m *Metrics
	m.Observe(NewOffspringCounts(), 1, 2, 3, time.Second)
}

func TestMetricsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	require.Error(t, err)
}

func TestWarmScoresAll(t *testing.T) {
	schedule := life.NewSchedule(8)
	boards := make([]*life.Board, 0, 10)
	for i := 0; i < 10; i++ {
		boards = append(boards, life.FromCells([]life.Cell{{X: 0, Y: i}, {X: 1, Y: i}, {X: 2, Y: i}}, schedule))
	}
	require.NoError(t, Warm(context.Background(), boards, 3))
	for _, b := range boards {
		require.True(t, b.Scored())
		require.InDelta(t, 3.0, b.Score(), 1e-9)
	}
}
