package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeforge/internal/life"
	"lifeforge/internal/stats"
	"lifeforge/internal/storage"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestEvolveWritesArtifactsAndMetrics(t *testing.T) {
	dir := t.TempDir()
	artifacts := filepath.Join(dir, "runs")
	best := filepath.Join(dir, "best.json")
	metrics := filepath.Join(dir, "lifeforge.prom")

	out, err := runCLI(t,
		"evolve",
		"--artifacts-dir", artifacts,
		"--population", "10",
		"--epochs", "2",
		"--grid-size", "4",
		"--horizon", "5",
		"--seed", "3",
		"--workers", "2",
		"--run-id", "cli-run",
		"--metrics-file", metrics,
		"--out", best,
		"--log-format", "json",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "run_id=cli-run")
	assert.Contains(t, out, "best_score=")

	board, err := life.ReadDocumentFile(best, nil)
	require.NoError(t, err)
	assert.Positive(t, board.Len())

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "lifeforge_evolution_epochs_total 2")

	entries, err := stats.ListRunIndex(artifacts)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cli-run", entries[0].RunID)

	out, err = runCLI(t, "runs", "--artifacts-dir", artifacts)
	require.NoError(t, err)
	assert.Contains(t, out, "cli-run")

	out, err = runCLI(t, "history", "--artifacts-dir", artifacts, "--run-id", "cli-run")
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(out, "\n"))

	exportDir := filepath.Join(dir, "exports")
	out, err = runCLI(t, "export", "--artifacts-dir", artifacts, "--latest", "--out", exportDir)
	require.NoError(t, err)
	assert.Contains(t, out, "exported run_id=cli-run")
	_, err = os.Stat(filepath.Join(exportDir, "cli-run", "score_history.csv"))
	require.NoError(t, err)
}

func TestEvolveReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "lifeforge.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
evolution:
  grid_size: 3
  population_size: 6
  epochs: 1
  horizon: 4
output:
  artifacts_dir: `+filepath.Join(dir, "runs")+`
  best_board_path: `+filepath.Join(dir, "best.json")+`
log:
  format: json
`), 0o644))

	out, err := runCLI(t, "evolve", "--config", cfgPath, "--run-id", "from-config")
	require.NoError(t, err)
	assert.Contains(t, out, "boards=6 epochs=1")

	_, err = os.Stat(filepath.Join(dir, "best.json"))
	require.NoError(t, err)
}

func TestEvolveRejectsBadChances(t *testing.T) {
	_, err := runCLI(t, "evolve", "--artifacts-dir", t.TempDir(), "--mutation", "0.7", "--crossover", "0.7")
	require.Error(t, err)
}

func TestStepAndScore(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "blinker.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"live_cells": [[0, 1], [1, 1], [2, 1]]}`), 0o644))

	next := filepath.Join(dir, "next.json")
	out, err := runCLI(t, "step", doc, "--generations", "1", "--out", next)
	require.NoError(t, err)
	assert.Contains(t, out, "generation 0: 3 live\n###\n")
	assert.Contains(t, out, "generation 1: 3 live\n#\n#\n#\n")

	board, err := life.ReadDocumentFile(next, nil)
	require.NoError(t, err)
	assert.True(t, board.IsAlive(1, 0))
	assert.True(t, board.IsAlive(1, 2))

	out, err = runCLI(t, "score", doc, "--horizon", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "live_cells=3\n")
	assert.Contains(t, out, "trajectory=[3 3 3]\n")
	assert.Contains(t, out, "score=3\n")
}

func TestStepRandomBoard(t *testing.T) {
	out, err := runCLI(t, "step", "--random", "5", "--seed", "9", "--generations", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "generation 0:")

	_, err = runCLI(t, "step")
	require.Error(t, err)
}

func TestInitResetAndUnknownCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lifeforge.db")
	kind := storage.DefaultStoreKind()

	out, err := runCLI(t, "init", "--db-path", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "initialized store="+kind+"\n", out)

	out, err = runCLI(t, "reset", "--db-path", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "reset store="+kind+"\n", out)

	out, err = runCLI(t, "init", "--store", "memory")
	require.NoError(t, err)
	assert.Equal(t, "initialized store=memory\n", out)

	_, err = runCLI(t, "frobnicate")
	require.Error(t, err)

	_, err = runCLI(t, "init", "--store", "redis")
	require.Error(t, err)
}
