package agent

import (
	"sort"

	"roulette-oracle/internal/category"
	"roulette-oracle/internal/strategy"
	"roulette-oracle/internal/wheel"
)

type Action string

const (
	ActionRed       Action = "red"
	ActionBlack     Action = "black"
	ActionEven      Action = "even"
	ActionOdd       Action = "odd"
	ActionLow       Action = "low"
	ActionHigh      Action = "high"
	ActionDozen1    Action = "d1"
	ActionDozen2    Action = "d2"
	ActionDozen3    Action = "d3"
	ActionCol1      Action = "c1"
	ActionCol2      Action = "c2"
	ActionCol3      Action = "c3"
	ActionLine      Action = "line"
	ActionCorner    Action = "corner"
	ActionSplit     Action = "split"
	ActionHot12     Action = "hot12"
	ActionSector    Action = "sector"
	ActionFibonacci Action = "fibonacci"
)

// Actions is the fixed enumeration order. Greedy ties resolve to the
// earliest entry.
var Actions = []Action{
	ActionRed, ActionBlack, ActionEven, ActionOdd, ActionLow, ActionHigh,
	ActionDozen1, ActionDozen2, ActionDozen3, ActionCol1, ActionCol2, ActionCol3,
	ActionLine, ActionCorner, ActionSplit, ActionHot12, ActionSector, ActionFibonacci,
}

var labels = map[Action]string{
	ActionRed:       "Red",
	ActionBlack:     "Black",
	ActionEven:      "Even",
	ActionOdd:       "Odd",
	ActionLow:       "1-18",
	ActionHigh:      "19-36",
	ActionDozen1:    "1st Dozen",
	ActionDozen2:    "2nd Dozen",
	ActionDozen3:    "3rd Dozen",
	ActionCol1:      "Column 1",
	ActionCol2:      "Column 2",
	ActionCol3:      "Column 3",
	ActionLine:      "Best Line",
	ActionCorner:    "Best Corner",
	ActionSplit:     "Best Split",
	ActionHot12:     "Hot 12",
	ActionSector:    "Wheel Sector",
	ActionFibonacci: "Fibonacci Positions",
}

func (a Action) Label() string {
	if l, ok := labels[a]; ok {
		return l
	}
	return string(a)
}

func ValidAction(a Action) bool {
	_, ok := labels[a]
	return ok
}

// Hot12 is the twelve most frequent outcomes in the trailing 50 spins,
// ascending outcome order on equal counts.
func Hot12(h []int) []int {
	f := wheel.Tally(wheel.Tail(h, 50))
	nums := make([]int, wheel.Slots)
	for n := range nums {
		nums[n] = n
	}
	sort.SliceStable(nums, func(i, j int) bool { return f[nums[i]] > f[nums[j]] })
	return nums[:12]
}

// Coverage is the set of outcomes an action wins on, given the history
// known before the spin. Line, corner and split pick the board position
// that best overlaps the trailing hot set.
func Coverage(a Action, h []int) []int {
	switch a {
	case ActionHot12:
		return Hot12(h)
	case ActionSector, ActionFibonacci:
		if len(h) == 0 {
			return nil
		}
		last := h[len(h)-1]
		if a == ActionSector {
			return strategy.SectorAround(last)
		}
		return strategy.FibonacciFrom(last)
	case ActionLine, ActionCorner, ActionSplit:
		m, _ := category.Best(category.ID(a), Hot12(h))
		return m
	}
	m, _ := category.Members(category.ID(a))
	return m
}

func covers(a Action, h []int, outcome int) bool {
	for _, n := range Coverage(a, h) {
		if n == outcome {
			return true
		}
	}
	return false
}
