package storage

import (
	"context"

	"lifeforge/internal/model"
)

// Store persists evolutionary runs, their epoch history, population snapshots
// and best boards.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.Run) error
	GetRun(ctx context.Context, id string) (model.Run, bool, error)
	ListRuns(ctx context.Context) ([]model.Run, error)
	SaveEpochHistory(ctx context.Context, runID string, history []model.EpochDiagnostics) error
	GetEpochHistory(ctx context.Context, runID string) ([]model.EpochDiagnostics, bool, error)
	SavePopulation(ctx context.Context, snapshot model.PopulationSnapshot) error
	GetPopulation(ctx context.Context, id string) (model.PopulationSnapshot, bool, error)
	SaveBestBoard(ctx context.Context, runID string, board model.BoardRecord) error
	GetBestBoard(ctx context.Context, runID string) (model.BoardRecord, bool, error)
}

// Resetter is implemented by stores that can drop all persisted state.
type Resetter interface {
	Reset(ctx context.Context) error
}
