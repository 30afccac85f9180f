package evo

import (
	"context"
	"fmt"
	"math/rand"

	"lifeforge/internal/life"
)

// Generation is a fixed-size population of boards. Advancing it produces a new
// Generation and leaves the receiver untouched.
type Generation struct {
	boards   []*life.Board
	gridSize int
	schedule *life.Schedule
	workers  int
}

// Build seeds populationSize random gridSize×gridSize boards, each normalized.
func Build(rng *rand.Rand, gridSize, populationSize int, schedule *life.Schedule) (*Generation, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if populationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if gridSize <= 0 {
		return nil, fmt.Errorf("grid size must be > 0")
	}
	if schedule == nil {
		schedule = life.DefaultSchedule()
	}

	boards := make([]*life.Board, 0, populationSize)
	for i := 0; i < populationSize; i++ {
		boards = append(boards, life.Random(rng, gridSize, schedule).Normalize())
	}
	return &Generation{boards: boards, gridSize: gridSize, schedule: schedule, workers: 1}, nil
}

// FromBoards wraps existing boards, for example a persisted snapshot.
func FromBoards(boards []*life.Board, gridSize int, schedule *life.Schedule) (*Generation, error) {
	if len(boards) == 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if schedule == nil {
		schedule = life.DefaultSchedule()
	}
	return &Generation{
		boards:   append([]*life.Board(nil), boards...),
		gridSize: gridSize,
		schedule: schedule,
		workers:  1,
	}, nil
}

// WithWorkers returns a shallow copy of g whose population is scored by
// workers goroutines. The receiver is left unchanged.
func (g *Generation) WithWorkers(workers int) *Generation {
	if workers < 1 {
		workers = 1
	}
	out := *g
	out.workers = workers
	return &out
}

func (g *Generation) Len() int {
	return len(g.boards)
}

func (g *Generation) Boards() []*life.Board {
	return append([]*life.Board(nil), g.boards...)
}

func (g *Generation) GridSize() int {
	return g.gridSize
}

// Warm scores every member on the worker pool.
func (g *Generation) Warm(ctx context.Context) error {
	return Warm(ctx, g.boards, g.workers)
}

func (g *Generation) Scores() []float64 {
	scores := make([]float64, len(g.boards))
	for i, b := range g.boards {
		scores[i] = b.Score()
	}
	return scores
}

func (g *Generation) MeanScore() float64 {
	scores := g.Scores()
	total := 0.0
	for _, s := range scores {
		total += s
	}
	return total / float64(len(scores))
}

func (g *Generation) BestScore() float64 {
	return g.BestBoard().Score()
}

func (g *Generation) MinScore() float64 {
	scores := g.Scores()
	lowest := scores[0]
	for _, s := range scores[1:] {
		lowest = min(lowest, s)
	}
	return lowest
}

// BestBoard returns the highest scoring member; ties go to the earliest.
func (g *Generation) BestBoard() *life.Board {
	best := g.boards[0]
	for _, b := range g.boards[1:] {
		if b.Score() > best.Score() {
			best = b
		}
	}
	return best
}

// Pick draws a copy of one member with probability proportional to its score
// shifted so the lowest score weighs zero. When every member scores the same
// the draw is uniform.
func (g *Generation) Pick(rng *rand.Rand) *life.Board {
	return g.boards[pickIndex(rng, g.Scores())].Copy()
}

func pickIndex(rng *rand.Rand, scores []float64) int {
	lowest := scores[0]
	for _, s := range scores[1:] {
		lowest = min(lowest, s)
	}
	total := 0.0
	for _, s := range scores {
		total += s - lowest
	}
	if total <= 0 {
		return rng.Intn(len(scores))
	}

	target := rng.Float64() * total
	acc := 0.0
	last := 0
	for i, s := range scores {
		weight := s - lowest
		if weight <= 0 {
			continue
		}
		acc += weight
		last = i
		if target < acc {
			return i
		}
	}
	return last
}

// GetBoard produces one offspring. A single uniform draw is partitioned in the
// order random, mutation, crossover; the remainder keeps a picked board.
func (g *Generation) GetBoard(rng *rand.Rand, chances Chances) (*life.Board, OffspringType) {
	board, kind := g.breed(rng, chances)
	if kind != OffspringPick && kind != OffspringRandom {
		board.Score()
	}
	return board, kind
}

// breed is GetBoard without scoring the new boards, so BuildNextGeneration can
// score them on the worker pool.
func (g *Generation) breed(rng *rand.Rand, chances Chances) (*life.Board, OffspringType) {
	effect := rng.Float64()
	if effect < chances.Random {
		return life.Random(rng, g.gridSize, g.schedule), OffspringRandom
	}
	effect -= chances.Random

	board := g.Pick(rng)
	if effect < chances.Mutation {
		return mutate(rng, board), OffspringMutate
	}
	effect -= chances.Mutation

	if effect < chances.Crossover {
		return crossover(rng, board, g.Pick(rng)), OffspringCrossover
	}
	return board, OffspringPick
}

// BuildNextGeneration draws every slot of the next population from the
// current one and scores the result.
func (g *Generation) BuildNextGeneration(ctx context.Context, rng *rand.Rand, chances Chances) (*Generation, OffspringCounts, error) {
	if err := chances.Validate(); err != nil {
		return nil, nil, err
	}
	if rng == nil {
		return nil, nil, fmt.Errorf("random source is required")
	}
	if err := g.Warm(ctx); err != nil {
		return nil, nil, err
	}

	counts := NewOffspringCounts()
	boards := make([]*life.Board, 0, len(g.boards))
	for range g.boards {
		board, kind := g.breed(rng, chances)
		counts[kind]++
		boards = append(boards, board)
	}

	next := &Generation{boards: boards, gridSize: g.gridSize, schedule: g.schedule, workers: g.workers}
	if err := next.Warm(ctx); err != nil {
		return nil, nil, err
	}
	return next, counts, nil
}
