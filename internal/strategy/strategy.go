package strategy

import (
	"fmt"
	"math"
)

type ID int

const (
	HotNumbers ID = iota
	ColdNumbers
	WheelSectorBias
	PatternRepeat
	ColourStreak
	DozenRotation
	GapAnalysis
	EvenOddShift
	HighLowBalance
	ColumnCycle
	RecencyCluster
	FibonacciPositions
)

// All lists every strategy in evaluation order. Vote accumulation follows
// this order.
var All = []ID{
	HotNumbers,
	ColdNumbers,
	WheelSectorBias,
	PatternRepeat,
	ColourStreak,
	DozenRotation,
	GapAnalysis,
	EvenOddShift,
	HighLowBalance,
	ColumnCycle,
	RecencyCluster,
	FibonacciPositions,
}

var names = map[ID]string{
	HotNumbers:         "Hot Numbers",
	ColdNumbers:        "Cold Numbers",
	WheelSectorBias:    "Wheel Sector Bias",
	PatternRepeat:      "Pattern Repeat",
	ColourStreak:       "Colour Streak",
	DozenRotation:      "Dozen Rotation",
	GapAnalysis:        "Gap Analysis",
	EvenOddShift:       "Even/Odd Shift",
	HighLowBalance:     "High/Low Balance",
	ColumnCycle:        "Column Cycle",
	RecencyCluster:     "Recency Cluster",
	FibonacciPositions: "Fibonacci Positions",
}

var keys = map[ID]string{
	HotNumbers:         "hot_numbers",
	ColdNumbers:        "cold_numbers",
	WheelSectorBias:    "wheel_sector_bias",
	PatternRepeat:      "pattern_repeat",
	ColourStreak:       "colour_streak",
	DozenRotation:      "dozen_rotation",
	GapAnalysis:        "gap_analysis",
	EvenOddShift:       "even_odd_shift",
	HighLowBalance:     "high_low_balance",
	ColumnCycle:        "column_cycle",
	RecencyCluster:     "recency_cluster",
	FibonacciPositions: "fibonacci_positions",
}

func (id ID) String() string {
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("strategy(%d)", int(id))
}

// Key is the stable snake_case identifier used on the wire.
func (id ID) Key() string {
	return keys[id]
}

func ParseKey(key string) (ID, bool) {
	for id, k := range keys {
		if k == key {
			return id, true
		}
	}
	return 0, false
}

type Result struct {
	Numbers    []int   `json:"numbers"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
	StatusFaulted     Status = "faulted"
)

// Outcome is the tagged result of running one strategy. Result is set only
// when Status is StatusAvailable; Reason only when StatusFaulted.
type Outcome struct {
	Strategy ID      `json:"-"`
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Status   Status  `json:"status"`
	Result   *Result `json:"result,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

func (o Outcome) Active() bool {
	return o.Status == StatusAvailable && o.Result != nil
}

func Available(id ID, r Result) Outcome {
	return Outcome{Strategy: id, Key: id.Key(), Name: id.String(), Status: StatusAvailable, Result: &r}
}

func Unavailable(id ID) Outcome {
	return Outcome{Strategy: id, Key: id.Key(), Name: id.String(), Status: StatusUnavailable}
}

func Faulted(id ID, reason string) Outcome {
	return Outcome{Strategy: id, Key: id.Key(), Name: id.String(), Status: StatusFaulted, Reason: reason}
}

// round matches half-up rounding for the non-negative values used in
// confidence formulas.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}

func clamp(x, ceiling float64) float64 {
	return math.Max(0, math.Min(ceiling, x))
}
