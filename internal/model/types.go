package model

import "lifeforge/internal/life"

// Run describes one evolutionary search.
type Run struct {
	ID              string  `json:"id"`
	CreatedAtUTC    string  `json:"created_at_utc"`
	GridSize        int     `json:"grid_size"`
	PopulationSize  int     `json:"population_size"`
	Epochs          int     `json:"epochs"`
	CompletedEpochs int     `json:"completed_epochs"`
	Seed            int64   `json:"seed"`
	Workers         int     `json:"workers"`
	Horizon         int     `json:"horizon"`
	MutationChance  float64 `json:"mutation_chance"`
	CrossoverChance float64 `json:"crossover_chance"`
	RandomChance    float64 `json:"random_chance"`
	ParentRunID     string  `json:"parent_run_id,omitempty"`
	FinalBestScore  float64 `json:"final_best_score"`
	FinalMeanScore  float64 `json:"final_mean_score"`
}

// EpochDiagnostics summarizes one population epoch. Epoch 0 is the seed
// population.
type EpochDiagnostics struct {
	Epoch         int     `json:"epoch"`
	Pick          int     `json:"pick"`
	Mutate        int     `json:"mutate"`
	Crossover     int     `json:"crossover"`
	Random        int     `json:"random"`
	MeanScore     float64 `json:"mean_score"`
	BestScore     float64 `json:"best_score"`
	MinScore      float64 `json:"min_score"`
	BestLiveCells int     `json:"best_live_cells"`
	DurationMS    int64   `json:"duration_ms"`
}

// BoardRecord is the persisted form of a board. It uses the same live_cells
// layout as the board document.
type BoardRecord struct {
	LiveCells [][2]int `json:"live_cells"`
	Score     float64  `json:"score"`
}

type PopulationSnapshot struct {
	ID       string        `json:"id"`
	RunID    string        `json:"run_id"`
	Epoch    int           `json:"epoch"`
	GridSize int           `json:"grid_size"`
	Boards   []BoardRecord `json:"boards"`
}

func NewBoardRecord(b *life.Board) BoardRecord {
	cells := b.Cells()
	record := BoardRecord{LiveCells: make([][2]int, 0, len(cells))}
	for _, c := range cells {
		record.LiveCells = append(record.LiveCells, [2]int{c.X, c.Y})
	}
	if b.Scored() {
		record.Score = b.Score()
	}
	return record
}

// Board rebuilds the board. The stored score is not trusted; it is recomputed
// on demand under schedule.
func (r BoardRecord) Board(schedule *life.Schedule) *life.Board {
	cells := make([]life.Cell, 0, len(r.LiveCells))
	for _, xy := range r.LiveCells {
		cells = append(cells, life.Cell{X: xy[0], Y: xy[1]})
	}
	return life.FromCells(cells, schedule)
}
