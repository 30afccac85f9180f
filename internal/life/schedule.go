package life

import "fmt"

const DefaultHorizon = 50

// Schedule fixes how a board is scored: the number of simulated steps and the
// weight applied to the live-cell count at each step. It is built once and
// shared read-only by every board.
type Schedule struct {
	Horizon int
	Weights []float64
}

// NewSchedule builds a linear ramp over horizon steps. Weights sum to 1 and
// grow with the step index, so a pattern that sustains or grows its population
// outscores one that collapses early or spikes and dies.
func NewSchedule(horizon int) *Schedule {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	total := float64(horizon*(horizon+1)) / 2
	weights := make([]float64, horizon)
	for i := range weights {
		weights[i] = float64(i+1) / total
	}
	return &Schedule{Horizon: horizon, Weights: weights}
}

// NewScheduleWithWeights uses weights verbatim; the horizon is their length.
func NewScheduleWithWeights(weights []float64) (*Schedule, error) {
	s := &Schedule{
		Horizon: len(weights),
		Weights: append([]float64(nil), weights...),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

var defaultSchedule = NewSchedule(DefaultHorizon)

func DefaultSchedule() *Schedule {
	return defaultSchedule
}

func (s *Schedule) Validate() error {
	if s.Horizon <= 0 {
		return fmt.Errorf("score horizon must be > 0")
	}
	if len(s.Weights) != s.Horizon {
		return fmt.Errorf("score weights length mismatch: got=%d want=%d", len(s.Weights), s.Horizon)
	}
	return nil
}

// Weigh returns the dot product of counts with the schedule weights.
func (s *Schedule) Weigh(counts []int) float64 {
	total := 0.0
	for i, c := range counts {
		if i >= len(s.Weights) {
			break
		}
		total += float64(c) * s.Weights[i]
	}
	return total
}
