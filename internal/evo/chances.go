package evo

import "fmt"

const chanceTolerance = 1e-9

// Chances are the per-slot probabilities of each breeding operator. Whatever
// probability is left over keeps a picked board unchanged.
type Chances struct {
	Mutation  float64 `json:"mutation" yaml:"mutation"`
	Crossover float64 `json:"crossover" yaml:"crossover"`
	Random    float64 `json:"random" yaml:"random"`
}

func DefaultChances() Chances {
	return Chances{
		Mutation:  0.03,
		Crossover: 0.06,
		Random:    0.01,
	}
}

// Validate rejects negative chances and combinations summing above 1. Draws
// are partitioned in a fixed order, so an oversubscribed sum would starve the
// later operators.
func (c Chances) Validate() error {
	if c.Mutation < 0 || c.Crossover < 0 || c.Random < 0 {
		return fmt.Errorf("offspring chances must be >= 0: %+v", c)
	}
	if keep := c.Keep(); keep < -chanceTolerance {
		return fmt.Errorf("offspring chances must sum to <= 1: got=%g", 1-keep)
	}
	return nil
}

// Keep is the implicit probability of passing a picked board through unchanged.
func (c Chances) Keep() float64 {
	return 1 - c.Mutation - c.Crossover - c.Random
}
