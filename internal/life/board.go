package life

import (
	"errors"
	"math/rand"
	"sort"
)

// ErrEmptyBoard is returned by geometric queries on a board with no live cells.
var ErrEmptyBoard = errors.New("board has no live cells")

// Cell is one position on the unbounded plane.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Neighbors returns the 8 Moore-neighborhood positions of c.
func (c Cell) Neighbors() [8]Cell {
	return [8]Cell{
		{c.X - 1, c.Y - 1},
		{c.X - 1, c.Y},
		{c.X - 1, c.Y + 1},
		{c.X, c.Y - 1},
		{c.X, c.Y + 1},
		{c.X + 1, c.Y - 1},
		{c.X + 1, c.Y},
		{c.X + 1, c.Y + 1},
	}
}

// memo holds values derived from the live-cell set. It is replaced as a whole
// whenever the set changes.
type memo struct {
	next   *Board
	score  float64
	scored bool
}

// Board is a sparse Game of Life configuration with memoized successor and
// score. A Board must not be mutated from two goroutines at once.
type Board struct {
	cells    map[Cell]struct{}
	memo     memo
	schedule *Schedule
}

// NewBoard returns an empty board scored with schedule. A nil schedule uses
// DefaultSchedule.
func NewBoard(schedule *Schedule) *Board {
	if schedule == nil {
		schedule = DefaultSchedule()
	}
	return &Board{
		cells:    make(map[Cell]struct{}),
		schedule: schedule,
	}
}

// Random fills the n×n region anchored at the origin, each cell alive with
// probability 1/2.
func Random(rng *rand.Rand, n int, schedule *Schedule) *Board {
	board := NewBoard(schedule)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if rng.Intn(2) == 1 {
				board.cells[Cell{i, j}] = struct{}{}
			}
		}
	}
	return board
}

// FromCells builds a board from an explicit cell list.
func FromCells(cells []Cell, schedule *Schedule) *Board {
	board := NewBoard(schedule)
	for _, c := range cells {
		board.cells[c] = struct{}{}
	}
	return board
}

func (b *Board) Schedule() *Schedule {
	return b.schedule
}

func (b *Board) Len() int {
	return len(b.cells)
}

func (b *Board) IsAlive(x, y int) bool {
	_, ok := b.cells[Cell{x, y}]
	return ok
}

func (b *Board) AddCell(x, y int) {
	b.cells[Cell{x, y}] = struct{}{}
	b.clearMemo()
}

func (b *Board) KillCell(x, y int) {
	if !b.IsAlive(x, y) {
		return
	}
	delete(b.cells, Cell{x, y})
	b.clearMemo()
}

func (b *Board) SwitchCell(x, y int) {
	if b.IsAlive(x, y) {
		b.KillCell(x, y)
		return
	}
	b.AddCell(x, y)
}

func (b *Board) Reset() {
	clear(b.cells)
	b.clearMemo()
}

func (b *Board) LiveNeighborCount(x, y int) int {
	count := 0
	for _, n := range (Cell{x, y}).Neighbors() {
		if _, ok := b.cells[n]; ok {
			count++
		}
	}
	return count
}

// WillSurvive applies Conway's rule to (x, y) against the current state.
func (b *Board) WillSurvive(x, y int) bool {
	switch b.LiveNeighborCount(x, y) {
	case 3:
		return true
	case 2:
		return b.IsAlive(x, y)
	default:
		return false
	}
}

// NextGeneration returns the synchronous successor of b. The result is
// memoized and shared; callers that want to edit it must Copy it first.
func (b *Board) NextGeneration() *Board {
	if b.memo.next == nil {
		b.memo.next = b.computeNext()
	}
	return b.memo.next
}

func (b *Board) computeNext() *Board {
	candidates := make(map[Cell]struct{}, len(b.cells)*9)
	for c := range b.cells {
		candidates[c] = struct{}{}
		for _, n := range c.Neighbors() {
			candidates[n] = struct{}{}
		}
	}

	next := NewBoard(b.schedule)
	for c := range candidates {
		if b.WillSurvive(c.X, c.Y) {
			next.cells[c] = struct{}{}
		}
	}
	return next
}

// Score simulates the schedule's horizon from b and returns the weighted sum
// of live-cell counts.
func (b *Board) Score() float64 {
	if !b.memo.scored {
		b.memo.score = b.schedule.Weigh(b.Trajectory())
		b.memo.scored = true
	}
	return b.memo.score
}

// Scored reports whether the score is already memoized.
func (b *Board) Scored() bool {
	return b.memo.scored
}

// Trajectory returns the live-cell count at each step of the horizon,
// starting with b itself.
func (b *Board) Trajectory() []int {
	counts := make([]int, 0, b.schedule.Horizon)
	current := b
	for i := 0; i < b.schedule.Horizon; i++ {
		counts = append(counts, current.Len())
		if i+1 < b.schedule.Horizon {
			current = current.NextGeneration()
		}
	}
	return counts
}

// Box returns the bounding rectangle of the live cells.
func (b *Board) Box() (minX, minY, maxX, maxY int, err error) {
	if len(b.cells) == 0 {
		return 0, 0, 0, 0, ErrEmptyBoard
	}
	first := true
	for c := range b.cells {
		if first {
			minX, maxX, minY, maxY = c.X, c.X, c.Y, c.Y
			first = false
			continue
		}
		minX = min(minX, c.X)
		maxX = max(maxX, c.X)
		minY = min(minY, c.Y)
		maxY = max(maxY, c.Y)
	}
	return minX, minY, maxX, maxY, nil
}

// Cells returns the live cells ordered by X, then Y.
func (b *Board) Cells() []Cell {
	out := make([]Cell, 0, len(b.cells))
	for c := range b.cells {
		out = append(out, c)
	}
	SortCells(out)
	return out
}

// Equal reports whether both boards hold the same live cells.
func (b *Board) Equal(other *Board) bool {
	if other == nil || len(b.cells) != len(other.cells) {
		return false
	}
	for c := range b.cells {
		if _, ok := other.cells[c]; !ok {
			return false
		}
	}
	return true
}

// Copy returns a deep copy, memo chain included.
func (b *Board) Copy() *Board {
	out := &Board{
		cells:    make(map[Cell]struct{}, len(b.cells)),
		schedule: b.schedule,
		memo: memo{
			score:  b.memo.score,
			scored: b.memo.scored,
		},
	}
	for c := range b.cells {
		out.cells[c] = struct{}{}
	}
	if b.memo.next != nil {
		out.memo.next = b.memo.next.Copy()
	}
	return out
}

func (b *Board) clearMemo() {
	b.memo = memo{}
}

// SortCells orders cells by X, then Y.
func SortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].X == cells[j].X {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
}
