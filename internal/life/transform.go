package life

import "strings"

// transform maps every live cell through f. The memoized successor is mapped
// the same way and the score is carried over, since the rule and the score are
// invariant under translation and reflection.
func (b *Board) transform(f func(Cell) Cell) *Board {
	out := &Board{
		cells:    make(map[Cell]struct{}, len(b.cells)),
		schedule: b.schedule,
		memo: memo{
			score:  b.memo.score,
			scored: b.memo.scored,
		},
	}
	for c := range b.cells {
		out.cells[f(c)] = struct{}{}
	}
	if b.memo.next != nil {
		out.memo.next = b.memo.next.transform(f)
	}
	return out
}

func (b *Board) Move(dx, dy int) *Board {
	return b.transform(func(c Cell) Cell {
		return Cell{c.X + dx, c.Y + dy}
	})
}

// FlipXY swaps the axes.
func (b *Board) FlipXY() *Board {
	return b.transform(func(c Cell) Cell {
		return Cell{c.Y, c.X}
	})
}

func (b *Board) MirrorX() *Board {
	return b.transform(func(c Cell) Cell {
		return Cell{-c.X, c.Y}
	})
}

func (b *Board) MirrorY() *Board {
	return b.transform(func(c Cell) Cell {
		return Cell{c.X, -c.Y}
	})
}

// Normalize moves the board so its bounding box starts at the origin. An empty
// board is already canonical and comes back as a copy.
func (b *Board) Normalize() *Board {
	minX, minY, _, _, err := b.Box()
	if err != nil {
		return b.Copy()
	}
	return b.Move(-minX, -minY)
}

// String draws the bounding box of the board, one row per y.
func (b *Board) String() string {
	minX, minY, maxX, maxY, err := b.Box()
	if err != nil {
		return "(empty)\n"
	}
	var sb strings.Builder
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if b.IsAlive(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
