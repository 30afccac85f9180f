package lifeforge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lifeforge/internal/config"
	"lifeforge/internal/evo"
	"lifeforge/internal/life"
	"lifeforge/internal/logging"
	"lifeforge/internal/model"
	"lifeforge/internal/stats"
	"lifeforge/internal/storage"
)

const (
	defaultArtifactsDir = "runs"
	defaultExportsDir   = "exports"
	defaultDBPath       = "lifeforge.db"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	ExportsDir   string
	Logger       *slog.Logger
}

// Client runs searches and reads their results back from the store and the
// artifacts directory.
type Client struct {
	store  storage.Store
	logger *slog.Logger

	artifactsDir string
	exportsDir   string
}

type RunRequest struct {
	RunID                string
	Evolution            config.EvolutionConfig
	SnapshotEvery        int
	ContinuePopulationID string
	Metrics              *evo.Metrics
	// OnEpoch runs after the client has persisted each epoch.
	OnEpoch func(model.EpochDiagnostics) error
}

type RunSummary struct {
	RunID          string
	ArtifactsDir   string
	BestByEpoch    []float64
	FinalBestScore float64
	FinalMeanScore float64
	BestBoard      *life.Board
	Elapsed        time.Duration
}

type RunsRequest struct {
	Limit int
}

type HistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		logger:       logger,
		artifactsDir: artifactsDir,
		exportsDir:   exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Reset(ctx context.Context) error {
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	resetter, ok := c.store.(storage.Resetter)
	if !ok {
		return errors.New("store does not support reset")
	}
	return resetter.Reset(ctx)
}

// Run executes one search and persists its run record, epoch history,
// snapshots, best board and artifacts.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	evoCfg, err := req.Evolution.EvoConfig()
	if err != nil {
		return RunSummary{}, err
	}
	if req.SnapshotEvery < 0 {
		return RunSummary{}, errors.New("snapshot interval must be >= 0")
	}
	if err := c.store.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	runID := req.RunID
	if runID == "" {
		runID = "run-" + uuid.NewString()
	}

	var initial *evo.Generation
	if req.ContinuePopulationID != "" {
		initial, err = c.loadPopulation(ctx, req.ContinuePopulationID, evoCfg)
		if err != nil {
			return RunSummary{}, err
		}
	}

	started := time.Now().UTC()
	run := model.Run{
		ID:              runID,
		CreatedAtUTC:    started.Format(time.RFC3339),
		GridSize:        evoCfg.GridSize,
		PopulationSize:  evoCfg.PopulationSize,
		Epochs:          evoCfg.Epochs,
		Seed:            evoCfg.Seed,
		Workers:         evoCfg.Workers,
		Horizon:         evoCfg.Schedule.Horizon,
		MutationChance:  evoCfg.Chances.Mutation,
		CrossoverChance: evoCfg.Chances.Crossover,
		RandomChance:    evoCfg.Chances.Random,
		ParentRunID:     parentRunID(req.ContinuePopulationID),
	}
	if initial != nil {
		run.PopulationSize = initial.Len()
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, err
	}

	history := make([]model.EpochDiagnostics, 0, evoCfg.Epochs+1)
	onEpoch := func(ctx context.Context, diag model.EpochDiagnostics, gen *evo.Generation) error {
		history = append(history, diag)
		if err := c.store.SaveEpochHistory(ctx, runID, history); err != nil {
			return err
		}
		if req.SnapshotEvery > 0 && diag.Epoch > 0 && diag.Epoch%req.SnapshotEvery == 0 {
			if err := c.store.SavePopulation(ctx, snapshotOf(runID, diag.Epoch, gen)); err != nil {
				return err
			}
		}
		if req.OnEpoch != nil {
			return req.OnEpoch(diag)
		}
		return nil
	}

	runner, err := evo.NewRunner(evoCfg, evo.RunnerOptions{
		RunID:   runID,
		Logger:  c.logger,
		Metrics: req.Metrics,
		OnEpoch: onEpoch,
	})
	if err != nil {
		return RunSummary{}, err
	}
	result, err := runner.Run(ctx, initial)
	if err != nil {
		return RunSummary{}, err
	}

	final := result.Final
	best := final.BestBoard()
	run.CompletedEpochs = len(result.Diagnostics) - 1
	run.FinalBestScore = best.Score()
	run.FinalMeanScore = final.MeanScore()
	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveBestBoard(ctx, runID, model.NewBoardRecord(best)); err != nil {
		return RunSummary{}, err
	}
	finalSnapshot := snapshotOf(runID, run.CompletedEpochs, final)
	finalSnapshot.ID = FinalPopulationID(runID)
	if err := c.store.SavePopulation(ctx, finalSnapshot); err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		Run:             run,
		History:         history,
		BestBoard:       best,
		FinalPopulation: &finalSnapshot,
	})
	if err != nil {
		return RunSummary{}, err
	}
	if err := stats.AppendRunIndex(c.artifactsDir, stats.RunIndexEntry{
		RunID:          runID,
		PopulationSize: run.PopulationSize,
		Epochs:         run.Epochs,
		Seed:           run.Seed,
		FinalBestScore: run.FinalBestScore,
		CreatedAtUTC:   run.CreatedAtUTC,
	}); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:          runID,
		ArtifactsDir:   runDir,
		BestByEpoch:    result.BestByEpoch,
		FinalBestScore: run.FinalBestScore,
		FinalMeanScore: run.FinalMeanScore,
		BestBoard:      best,
		Elapsed:        time.Since(started),
	}, nil
}

// FinalPopulationID names the snapshot holding a run's last population.
func FinalPopulationID(runID string) string {
	return runID + "/final"
}

// Runs lists runs newest first. Runs missing from the store are read from the
// artifacts index.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]model.Run, error) {
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		index, err := stats.ListRunIndex(c.artifactsDir)
		if err != nil {
			return nil, err
		}
		for _, entry := range index {
			run, ok, err := stats.ReadRun(c.artifactsDir, entry.RunID)
			if err != nil {
				return nil, err
			}
			if !ok {
				run = model.Run{
					ID:             entry.RunID,
					CreatedAtUTC:   entry.CreatedAtUTC,
					PopulationSize: entry.PopulationSize,
					Epochs:         entry.Epochs,
					Seed:           entry.Seed,
					FinalBestScore: entry.FinalBestScore,
				}
			}
			runs = append(runs, run)
		}
	}
	if req.Limit > 0 && len(runs) > req.Limit {
		runs = runs[:req.Limit]
	}
	return runs, nil
}

func (c *Client) History(ctx context.Context, req HistoryRequest) ([]model.EpochDiagnostics, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetEpochHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		history, err = c.historyFromArtifacts(runID)
		if err != nil {
			return nil, err
		}
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[len(history)-req.Limit:]
	}
	return history, nil
}

func (c *Client) BestBoard(ctx context.Context, runID string, latest bool, schedule *life.Schedule) (*life.Board, error) {
	runID, err := c.resolveRunID(ctx, runID, latest)
	if err != nil {
		return nil, err
	}
	record, ok, err := c.store.GetBestBoard(ctx, runID)
	if err != nil {
		return nil, err
	}
	if ok {
		return record.Board(schedule), nil
	}
	board, ok, err := stats.ReadBestBoard(c.artifactsDir, runID, schedule)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("best board not found for run %s", runID)
	}
	return board, nil
}

func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = c.exportsDir
	}
	dir, err := stats.ExportRunArtifacts(c.artifactsDir, runID, outDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: dir}, nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" {
		return runID, nil
	}
	if !latest {
		return "", errors.New("run id is required (or use latest)")
	}
	runs, err := c.Runs(ctx, RunsRequest{Limit: 1})
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", errors.New("no runs recorded")
	}
	return runs[0].ID, nil
}

// historyFromArtifacts prefers the full epoch history and falls back to the
// best-score column of the CSV series.
func (c *Client) historyFromArtifacts(runID string) ([]model.EpochDiagnostics, error) {
	history, ok, err := stats.ReadEpochHistory(c.artifactsDir, runID)
	if err != nil {
		return nil, err
	}
	if ok {
		return history, nil
	}

	series, ok, err := stats.ReadScoreSeries(c.artifactsDir, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("epoch history not found for run %s", runID)
	}
	history = make([]model.EpochDiagnostics, 0, len(series))
	for i, best := range series {
		history = append(history, model.EpochDiagnostics{Epoch: i, BestScore: best})
	}
	return history, nil
}

func (c *Client) loadPopulation(ctx context.Context, id string, cfg evo.Config) (*evo.Generation, error) {
	snapshot, ok, err := c.store.GetPopulation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("population snapshot not found: %s", id)
	}
	boards := make([]*life.Board, 0, len(snapshot.Boards))
	for _, record := range snapshot.Boards {
		boards = append(boards, record.Board(cfg.Schedule))
	}
	gridSize := snapshot.GridSize
	if gridSize <= 0 {
		gridSize = cfg.GridSize
	}
	return evo.FromBoards(boards, gridSize, cfg.Schedule)
}

func snapshotOf(runID string, epoch int, gen *evo.Generation) model.PopulationSnapshot {
	boards := gen.Boards()
	records := make([]model.BoardRecord, 0, len(boards))
	for _, b := range boards {
		records = append(records, model.NewBoardRecord(b))
	}
	return model.PopulationSnapshot{
		ID:       fmt.Sprintf("%s/%d", runID, epoch),
		RunID:    runID,
		Epoch:    epoch,
		GridSize: gen.GridSize(),
		Boards:   records,
	}
}

func parentRunID(populationID string) string {
	for i := len(populationID) - 1; i >= 0; i-- {
		if populationID[i] == '/' {
			return populationID[:i]
		}
	}
	return ""
}
