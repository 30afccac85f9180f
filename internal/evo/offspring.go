package evo

import "fmt"

// OffspringType records how a population member was produced.
type OffspringType int

const (
	OffspringPick OffspringType = iota
	OffspringMutate
	OffspringCrossover
	OffspringRandom
)

var offspringTypes = []OffspringType{OffspringPick, OffspringMutate, OffspringCrossover, OffspringRandom}

// OffspringTypes lists every offspring type in display order.
func OffspringTypes() []OffspringType {
	return append([]OffspringType(nil), offspringTypes...)
}

func (t OffspringType) String() string {
	switch t {
	case OffspringPick:
		return "pick"
	case OffspringMutate:
		return "mutate"
	case OffspringCrossover:
		return "crossover"
	case OffspringRandom:
		return "random"
	default:
		return fmt.Sprintf("offspring(%d)", int(t))
	}
}

// OffspringCounts tallies offspring types for one epoch.
type OffspringCounts map[OffspringType]int

func NewOffspringCounts() OffspringCounts {
	counts := make(OffspringCounts, len(offspringTypes))
	for _, t := range offspringTypes {
		counts[t] = 0
	}
	return counts
}

func (c OffspringCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}
