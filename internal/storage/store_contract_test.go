package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"lifeforge/internal/model"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Init(ctx))

	older := model.Run{ID: "run-a", CreatedAtUTC: "2026-01-01T00:00:00Z", PopulationSize: 10, Epochs: 3, Seed: 1}
	newer := model.Run{ID: "run-b", CreatedAtUTC: "2026-02-01T00:00:00Z", PopulationSize: 20, Epochs: 5, Seed: 2}
	require.NoError(t, store.SaveRun(ctx, older))
	require.NoError(t, store.SaveRun(ctx, newer))
	require.Error(t, store.SaveRun(ctx, model.Run{}))

	loaded, ok, err := store.GetRun(ctx, "run-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, older, loaded)

	_, ok, err = store.GetRun(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "run-b", runs[0].ID)

	older.FinalBestScore = 12.5
	require.NoError(t, store.SaveRun(ctx, older))
	loaded, _, err = store.GetRun(ctx, "run-a")
	require.NoError(t, err)
	require.Equal(t, 12.5, loaded.FinalBestScore)

	history := []model.EpochDiagnostics{
		{Epoch: 0, MeanScore: 1, BestScore: 2},
		{Epoch: 1, Pick: 8, Mutate: 1, Crossover: 1, MeanScore: 1.5, BestScore: 3},
	}
	require.NoError(t, store.SaveEpochHistory(ctx, "run-a", history))
	gotHistory, ok, err := store.GetEpochHistory(ctx, "run-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, history, gotHistory)

	_, ok, err = store.GetEpochHistory(ctx, "run-b")
	require.NoError(t, err)
	require.False(t, ok)

	board := model.BoardRecord{LiveCells: [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, Score: 4}
	require.NoError(t, store.SaveBestBoard(ctx, "run-a", board))
	gotBoard, ok, err := store.GetBestBoard(ctx, "run-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, board, gotBoard)

	snapshot := model.PopulationSnapshot{
		ID:       "run-a/3",
		RunID:    "run-a",
		Epoch:    3,
		GridSize: 4,
		Boards:   []model.BoardRecord{board, {LiveCells: [][2]int{{2, 2}}}},
	}
	require.NoError(t, store.SavePopulation(ctx, snapshot))
	gotSnapshot, ok, err := store.GetPopulation(ctx, "run-a/3")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, snapshot, gotSnapshot)

	if resetter, ok := store.(Resetter); ok {
		require.NoError(t, resetter.Reset(ctx))
		runs, err := store.ListRuns(ctx)
		require.NoError(t, err)
		require.Empty(t, runs)
		_, ok, err := store.GetBestBoard(ctx, "run-a")
		require.NoError(t, err)
		require.False(t, ok)
	}
}
