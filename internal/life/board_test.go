package life

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blinker() *Board {
	return FromCells([]Cell{{1, 0}, {1, 1}, {1, 2}}, nil)
}

func TestSwitchCellTwiceRestoresState(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	board := Random(rng, 6, nil)
	for x := -1; x <= 6; x++ {
		for y := -1; y <= 6; y++ {
			before := board.IsAlive(x, y)
			board.SwitchCell(x, y)
			require.NotEqual(t, before, board.IsAlive(x, y))
			board.SwitchCell(x, y)
			require.Equal(t, before, board.IsAlive(x, y), "cell (%d,%d)", x, y)
		}
	}
}

func TestKillDeadCellKeepsMemo(t *testing.T) {
	board := blinker()
	score := board.Score()
	board.KillCell(10, 10)
	require.True(t, board.Scored())
	require.Equal(t, score, board.Score())
}

func TestMutationsClearMemo(t *testing.T) {
	board := blinker()
	_ = board.Score()
	next := board.NextGeneration()
	require.True(t, board.Scored())

	board.AddCell(5, 5)
	assert.False(t, board.Scored())
	assert.NotSame(t, next, board.NextGeneration())

	_ = board.Score()
	board.KillCell(5, 5)
	assert.False(t, board.Scored())

	_ = board.Score()
	board.Reset()
	assert.False(t, board.Scored())
	assert.Equal(t, 0, board.Len())
	assert.Equal(t, 0, board.NextGeneration().Len())
}

func TestEmptyBoardStaysEmpty(t *testing.T) {
	board := NewBoard(nil)
	require.Equal(t, 0, board.NextGeneration().Len())
	require.Equal(t, 0.0, board.Score())
}

func TestLonelyCellDies(t *testing.T) {
	board := FromCells([]Cell{{3, 4}}, nil)
	require.Equal(t, 0, board.LiveNeighborCount(3, 4))
	require.False(t, board.WillSurvive(3, 4))
	require.Equal(t, 0, board.NextGeneration().Len())
}

func TestBlockIsStillLife(t *testing.T) {
	block := FromCells([]Cell{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, nil)
	for _, c := range block.Cells() {
		require.Equal(t, 3, block.LiveNeighborCount(c.X, c.Y))
	}
	require.True(t, block.NextGeneration().Equal(block))
}

func TestBlinkerOscillates(t *testing.T) {
	board := blinker()
	vertical := FromCells([]Cell{{0, 1}, {1, 1}, {2, 1}}, nil)

	first := board.NextGeneration()
	require.True(t, first.Equal(vertical), "got %v", first.Cells())
	second := first.NextGeneration()
	require.True(t, second.Equal(board), "got %v", second.Cells())
}

func TestNextGenerationDoesNotMutateReceiver(t *testing.T) {
	board := blinker()
	before := board.Cells()
	_ = board.NextGeneration()
	require.Equal(t, before, board.Cells())
}

func TestWillSurviveRule(t *testing.T) {
	// Row of live cells at y=0 gives (1,1) exactly 3 neighbors while dead.
	board := FromCells([]Cell{{0, 0}, {1, 0}, {2, 0}}, nil)
	assert.True(t, board.WillSurvive(1, 1))
	assert.True(t, board.WillSurvive(1, 0))
	assert.False(t, board.WillSurvive(0, 0))

	crowded := FromCells([]Cell{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {1, 1}}, nil)
	assert.Equal(t, 4, crowded.LiveNeighborCount(1, 1))
	assert.False(t, crowded.WillSurvive(1, 1))
}

func TestScoreUsesTrajectory(t *testing.T) {
	schedule, err := NewScheduleWithWeights([]float64{1, 10, 100})
	require.NoError(t, err)

	board := FromCells([]Cell{{1, 0}, {1, 1}, {1, 2}}, schedule)
	require.Equal(t, []int{3, 3, 3}, board.Trajectory())
	require.InDelta(t, 333.0, board.Score(), 1e-9)

	lonely := FromCells([]Cell{{0, 0}}, schedule)
	require.Equal(t, []int{1, 0, 0}, lonely.Trajectory())
	require.InDelta(t, 1.0, lonely.Score(), 1e-9)
}

func TestScorePrefersSustainedPopulation(t *testing.T) {
	block := FromCells([]Cell{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, nil)
	// Four cells in a diagonal line die out immediately.
	diagonal := FromCells([]Cell{{0, 0}, {1, 1}, {2, 2}, {3, 3}}, nil)
	require.Greater(t, block.Score(), diagonal.Score())
}

func TestBoxEmptyBoard(t *testing.T) {
	_, _, _, _, err := NewBoard(nil).Box()
	require.ErrorIs(t, err, ErrEmptyBoard)
}

func TestBox(t *testing.T) {
	board := FromCells([]Cell{{-2, 5}, {4, -1}, {0, 0}}, nil)
	minX, minY, maxX, maxY, err := board.Box()
	require.NoError(t, err)
	assert.Equal(t, [4]int{-2, -1, 4, 5}, [4]int{minX, minY, maxX, maxY})
}

func TestCopyIsDeep(t *testing.T) {
	board := blinker()
	_ = board.Score()

	clone := board.Copy()
	require.True(t, clone.Scored())
	require.True(t, clone.Equal(board))
	require.NotSame(t, board.NextGeneration(), clone.NextGeneration())
	require.True(t, clone.NextGeneration().Equal(board.NextGeneration()))

	clone.SwitchCell(9, 9)
	assert.True(t, board.Scored())
	assert.False(t, board.IsAlive(9, 9))

	clone.NextGeneration().AddCell(50, 50)
	assert.False(t, board.NextGeneration().IsAlive(50, 50))
}

func TestRandomIsReproducible(t *testing.T) {
	a := Random(rand.New(rand.NewSource(42)), 10, nil)
	b := Random(rand.New(rand.NewSource(42)), 10, nil)
	require.True(t, a.Equal(b))
	for _, c := range a.Cells() {
		require.True(t, c.X >= 0 && c.X < 10 && c.Y >= 0 && c.Y < 10)
	}
}
