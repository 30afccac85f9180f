package evo

import (
	"math/rand"

	"lifeforge/internal/life"
)

// Mutate toggles one cell of a copy of board, chosen uniformly in
// [0, maxX] × [0, maxY] where maxX and maxY come from the board's current
// bounding box, and returns the scored, normalized result. A negative bound
// collapses to 0, so an empty board or one lying left of or above the origin
// toggles along that axis at 0.
func Mutate(rng *rand.Rand, board *life.Board) *life.Board {
	out := mutate(rng, board)
	out.Score()
	return out
}

func mutate(rng *rand.Rand, board *life.Board) *life.Board {
	child := board.Copy()
	maxX, maxY := 0, 0
	if _, _, bx, by, err := child.Box(); err == nil {
		maxX, maxY = max(bx, 0), max(by, 0)
	}
	x := rng.Intn(maxX + 1)
	y := rng.Intn(maxY + 1)
	child.SwitchCell(x, y)
	return child.Normalize()
}

// Crossover combines two parents cell by cell: cells both parents agree on are
// inherited as is, disputed cells are settled by a fair coin. The result is
// scored and normalized.
func Crossover(rng *rand.Rand, a, b *life.Board) *life.Board {
	out := crossover(rng, a, b)
	out.Score()
	return out
}

func crossover(rng *rand.Rand, a, b *life.Board) *life.Board {
	seen := make(map[life.Cell]struct{}, a.Len()+b.Len())
	candidates := make([]life.Cell, 0, a.Len()+b.Len())
	for _, parent := range []*life.Board{a, b} {
		for _, c := range parent.Cells() {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			candidates = append(candidates, c)
		}
	}
	// Coin flips must follow a stable order for a seed to reproduce a run.
	life.SortCells(candidates)

	child := life.NewBoard(a.Schedule())
	for _, c := range candidates {
		if inheritsCell(rng, a, b, c) {
			child.AddCell(c.X, c.Y)
		}
	}
	return child.Normalize()
}

func inheritsCell(rng *rand.Rand, a, b *life.Board, c life.Cell) bool {
	inA := a.IsAlive(c.X, c.Y)
	inB := b.IsAlive(c.X, c.Y)
	if inA == inB {
		return inA
	}
	return rng.Intn(2) == 1
}
