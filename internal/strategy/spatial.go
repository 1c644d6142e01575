package strategy

import (
	"fmt"

	"roulette-oracle/internal/wheel"
)

// fibonacciOffsets are the wheel-position steps used by the Fibonacci
// projection. The duplicate 1 is intentional.
var fibonacciOffsets = []int{1, 1, 2, 3, 5, 8, 13}

type orderedSet struct {
	seen  map[int]bool
	items []int
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: map[int]bool{}}
}

func (s *orderedSet) add(ns ...int) {
	for _, n := range ns {
		if s.seen[n] {
			continue
		}
		s.seen[n] = true
		s.items = append(s.items, n)
	}
}

func (s *orderedSet) first(limit int) []int {
	if len(s.items) > limit {
		return s.items[:limit]
	}
	return s.items
}

// SectorAround is the centre pocket followed by its four wheel neighbours
// on each side.
func SectorAround(centre int) []int {
	set := newOrderedSet()
	set.add(centre)
	set.add(wheel.Neighbours(centre, 4)...)
	return set.first(15)
}

// FibonacciFrom projects Fibonacci-spaced pockets forward and then backward
// from n's wheel position.
func FibonacciFrom(n int) []int {
	pos := wheel.Position(n)
	set := newOrderedSet()
	for _, f := range fibonacciOffsets {
		set.add(wheel.At(pos + f))
	}
	for _, f := range fibonacciOffsets {
		set.add(wheel.At(pos - f))
	}
	return set.first(12)
}

func wheelSectorBias(h []int) (Result, bool) {
	w := wheel.Tail(h, 30)
	if len(w) < 6 {
		return Result{}, false
	}
	f := wheel.Tally(w)
	ranked := rankAll(func(n int) float64 {
		sc := f[n] * 2
		for _, x := range wheel.Neighbours(n, 2) {
			sc += f[x]
		}
		return float64(sc)
	}, true)
	centre := ranked[0].n
	return Result{
		Numbers:    SectorAround(centre),
		Confidence: clamp(round(36+float64(len(w))), 85),
		Reasoning: fmt.Sprintf("Hottest wheel sector centred on pocket %d (position %d), including four physical neighbours each side.",
			centre, wheel.Position(centre)),
	}, true
}

func recencyCluster(h []int) (Result, bool) {
	if len(h) < 5 {
		return Result{}, false
	}
	recent := wheel.Tail(h, 5)
	set := newOrderedSet()
	for _, n := range recent {
		set.add(n)
		set.add(wheel.Neighbours(n, 2)...)
	}
	return Result{
		Numbers:    append([]int(nil), set.first(15)...),
		Confidence: clamp(float64(18+len(recent)*5), 58),
		Reasoning:  fmt.Sprintf("Last %d results %v plus their two wheel neighbours each side.", len(recent), recent),
	}, true
}

func fibonacciPositions(h []int) (Result, bool) {
	if len(h) < 3 {
		return Result{}, false
	}
	last := h[len(h)-1]
	return Result{
		Numbers:    FibonacciFrom(last),
		Confidence: clamp(15+float64(len(h))/4, 52),
		Reasoning: fmt.Sprintf("Fibonacci-spaced pockets from %d (position %d), offsets ±%v.",
			last, wheel.Position(last), fibonacciOffsets),
	}, true
}
