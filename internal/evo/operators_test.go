package evo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"lifeforge/internal/life"
)

func TestCrossoverOfIdenticalParentsIsNormalizedParent(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	for i := 0; i < 25; i++ {
		parent := life.Random(rng, 7, nil).Move(rng.Intn(10)-5, rng.Intn(10)-5)
		child := Crossover(rng, parent, parent.Copy())
		require.True(t, child.Equal(parent.Normalize()))
		require.True(t, child.Scored())
	}
}

func TestCrossoverKeepsAgreedCells(t *testing.T) {
	a := life.FromCells([]life.Cell{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}, nil)
	b := life.FromCells([]life.Cell{{X: 0, Y: 0}, {X: 3, Y: 3}}, nil)
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 50; i++ {
		child := crossover(rng, a, b)
		// The shared cell sits at the minimum corner, so it survives normalization in place.
		require.True(t, child.IsAlive(0, 0))
		for _, c := range child.Cells() {
			require.True(t, a.IsAlive(c.X, c.Y) || b.IsAlive(c.X, c.Y))
		}
	}
}

func TestCrossoverCoinIsFair(t *testing.T) {
	a := life.FromCells([]life.Cell{{X: 0, Y: 0}, {X: 5, Y: 0}}, nil)
	b := life.FromCells([]life.Cell{{X: 0, Y: 0}}, nil)
	rng := rand.New(rand.NewSource(10))

	const trials = 4000
	kept := 0
	for i := 0; i < trials; i++ {
		if crossover(rng, a, b).Len() == 2 {
			kept++
		}
	}
	require.InDelta(t, 0.5, float64(kept)/trials, 0.04)
}

func TestMutateTogglesOneCell(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	parent := life.FromCells([]life.Cell{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 0, Y: 3}, {X: 3, Y: 3}}, nil)

	for i := 0; i < 50; i++ {
		child := Mutate(rng, parent)
		require.True(t, child.Scored())
		diff := child.Len() - parent.Len()
		require.True(t, diff == 1 || diff == -1, "diff %d", diff)
		// The corners pin the box, so normalization is a no-op unless a corner died.
		if diff == 1 {
			added := 0
			for _, c := range child.Cells() {
				if !parent.IsAlive(c.X, c.Y) {
					added++
					require.True(t, c.X >= 0 && c.X <= 3 && c.Y >= 0 && c.Y <= 3)
				}
			}
			require.Equal(t, 1, added)
		}
	}
	require.Equal(t, 4, parent.Len())
}

func TestMutateEmptyBoard(t *testing.T) {
	child := Mutate(rand.New(rand.NewSource(1)), life.NewBoard(nil))
	require.Equal(t, []life.Cell{{X: 0, Y: 0}}, child.Cells())
}

func TestMutateResultIsNormalized(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	for i := 0; i < 30; i++ {
		parent := life.Random(rng, 6, nil)
		child := Mutate(rng, parent)
		if child.Len() == 0 {
			continue
		}
		minX, minY, _, _, err := child.Box()
		require.NoError(t, err)
		require.Equal(t, 0, minX)
		require.Equal(t, 0, minY)
	}
}

func TestMutateDrawsFromParentsCurrentBox(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	parent := life.FromCells([]life.Cell{{X: 2, Y: 2}, {X: 3, Y: 3}}, nil)

	const trials = 2000
	widened := 0
	for i := 0; i < trials; i++ {
		child := Mutate(rng, parent)
		_, _, maxX, maxY, err := child.Box()
		require.NoError(t, err)
		require.LessOrEqual(t, maxX, 3)
		require.LessOrEqual(t, maxY, 3)
		if maxX > 1 || maxY > 1 {
			widened++
		}
	}
	// 12 of the 16 cells in [0,3]x[0,3] lie outside the parent's own 2x2 box.
	require.InDelta(t, 0.75, float64(widened)/trials, 0.04)
	require.Equal(t, []life.Cell{{X: 2, Y: 2}, {X: 3, Y: 3}}, parent.Cells())
}

func TestMutateBoardLeftOfOrigin(t *testing.T) {
	parent := life.FromCells([]life.Cell{{X: -5, Y: -5}, {X: -4, Y: -4}}, nil)
	child := Mutate(rand.New(rand.NewSource(4)), parent)
	require.Equal(t, []life.Cell{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 5, Y: 5}}, child.Cells())
}
