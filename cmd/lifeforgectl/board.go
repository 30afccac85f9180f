package main

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"lifeforge/internal/config"
	"lifeforge/internal/life"
)

// boardSource is the board a step or score command works on: a document
// argument, or a random square board when --random is set.
type boardSource struct {
	random  int
	seed    int64
	horizon int
}

func (s *boardSource) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVar(&s.random, "random", 0, "use a random N x N board instead of a document")
	fl.Int64Var(&s.seed, "seed", 1, "seed for --random")
	fl.IntVar(&s.horizon, "horizon", life.DefaultHorizon, "simulated steps behind a score")
}

func (s *boardSource) load(args []string, cfg config.Config, cmd *cobra.Command) (*life.Board, error) {
	e := cfg.Evolution
	if cmd.Flags().Changed("horizon") {
		e.Horizon = s.horizon
		e.ScoreWeights = nil
	}
	if e.Horizon <= 0 && len(e.ScoreWeights) == 0 {
		return nil, errors.New("horizon must be > 0")
	}
	schedule, err := e.Schedule()
	if err != nil {
		return nil, err
	}

	switch {
	case s.random > 0 && len(args) > 0:
		return nil, errors.New("pass either a document or --random, not both")
	case s.random > 0:
		return life.Random(rand.New(rand.NewSource(s.seed)), s.random, schedule), nil
	case len(args) == 1:
		return life.ReadDocumentFile(args[0], schedule)
	default:
		return nil, errors.New("board document path is required")
	}
}

func (a *app) newStepCommand() *cobra.Command {
	var (
		src         boardSource
		generations int
		out         string
	)
	cmd := &cobra.Command{
		Use:   "step [document]",
		Short: "Print the following generations of a board",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if generations < 0 {
				return errors.New("generations must be >= 0")
			}
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			board, err := src.load(args, cfg, cmd)
			if err != nil {
				return err
			}
			for i := 0; i <= generations; i++ {
				fmt.Fprintf(a.stdout, "generation %d: %d live\n", i, board.Len())
				fmt.Fprint(a.stdout, board.Normalize().String())
				if i < generations {
					board = board.NextGeneration()
				}
			}
			if out != "" {
				return life.WriteDocumentFile(out, board)
			}
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().IntVar(&generations, "generations", 1, "generations to advance")
	cmd.Flags().StringVar(&out, "out", "", "write the last generation to this document")
	return cmd
}

func (a *app) newScoreCommand() *cobra.Command {
	var src boardSource
	cmd := &cobra.Command{
		Use:   "score [document]",
		Short: "Print the score of a board and its live-cell trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			board, err := src.load(args, cfg, cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "live_cells=%d\n", board.Len())
			fmt.Fprintf(a.stdout, "score=%s\n", humanize.CommafWithDigits(board.Score(), 3))
			fmt.Fprintf(a.stdout, "trajectory=%v\n", board.Trajectory())
			return nil
		},
	}
	src.register(cmd)
	return cmd
}
