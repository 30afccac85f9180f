package evo

import (
	"context"

	"golang.org/x/sync/errgroup"

	"lifeforge/internal/life"
)

// Warm computes the memoized score of every board using up to workers
// goroutines. Each board is scored by exactly one goroutine.
func Warm(ctx context.Context, boards []*life.Board, workers int) error {
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, board := range boards {
		if board.Scored() {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			board.Score()
			return nil
		})
	}
	return g.Wait()
}
