package consensus

import (
	"fmt"
	"math"
	"sort"

	"roulette-oracle/internal/strategy"
	"roulette-oracle/internal/wheel"
)

const (
	minPredictions = 12
	maxPredictions = 18
	coverageShare  = 0.32
)

// Evaluator runs one strategy over a history.
type Evaluator interface {
	Evaluate(id strategy.ID, h []int) strategy.Outcome
}

type Prediction struct {
	Number     int         `json:"number"`
	Color      wheel.Color `json:"color"`
	Score      float64     `json:"score"`
	Confidence int         `json:"confidence"`
	VoteCount  int         `json:"vote_count"`
}

type Report struct {
	Predictions []Prediction       `json:"predictions"`
	Results     []strategy.Outcome `json:"results"`
	ActiveCount int                `json:"active_count"`
}

// Top returns the predicted numbers in rank order.
func (r Report) Top() []int {
	out := make([]int, len(r.Predictions))
	for i, p := range r.Predictions {
		out[i] = p.Number
	}
	return out
}

type Aggregator struct {
	eval Evaluator
	ids  []strategy.ID
}

func New(eval Evaluator) *Aggregator {
	if eval == nil {
		eval = strategy.Default()
	}
	return &Aggregator{eval: eval, ids: strategy.All}
}

// Run evaluates every strategy and merges their votes. A strategy that
// panics is recorded as faulted and skipped.
func (a *Aggregator) Run(h []int) Report {
	var votes [wheel.Slots]float64
	var voted [wheel.Slots]bool
	var supporters [wheel.Slots]int

	results := make([]strategy.Outcome, 0, len(a.ids))
	active := 0
	for _, id := range a.ids {
		out := a.evaluate(id, h)
		results = append(results, out)
		if !out.Active() {
			continue
		}
		active++
		r := out.Result
		weight := r.Confidence * 12 / float64(max(1, len(r.Numbers)))
		for _, n := range r.Numbers {
			if !wheel.Valid(n) {
				continue
			}
			votes[n] += weight
			voted[n] = true
			supporters[n]++
		}
	}

	ranked := make([]int, 0, wheel.Slots)
	for n := 0; n < wheel.Slots; n++ {
		if voted[n] {
			ranked = append(ranked, n)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return votes[ranked[i]] > votes[ranked[j]] })

	size := PredictionCount(len(ranked))
	preds := make([]Prediction, 0, size)
	if len(ranked) > 0 {
		top := votes[ranked[0]]
		if top <= 0 {
			top = 1
		}
		for _, n := range ranked[:size] {
			preds = append(preds, Prediction{
				Number:     n,
				Color:      wheel.ColorOf(n),
				Score:      votes[n],
				Confidence: int(math.Min(99, math.Floor(votes[n]/top*80+12+0.5))),
				VoteCount:  supporters[n],
			})
		}
	}
	return Report{Predictions: preds, Results: results, ActiveCount: active}
}

// PredictionCount is the size of the presented list for a given number of
// distinct voted outcomes.
func PredictionCount(voted int) int {
	size := min(maxPredictions, max(minPredictions, int(math.Ceil(float64(voted)*coverageShare))))
	return min(size, voted)
}

func (a *Aggregator) evaluate(id strategy.ID, h []int) (out strategy.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = strategy.Faulted(id, fmt.Sprint(r))
		}
	}()
	out = a.eval.Evaluate(id, h)
	if out.Active() {
		for _, n := range out.Result.Numbers {
			if !wheel.Valid(n) {
				return strategy.Faulted(id, fmt.Sprintf("number %d out of range", n))
			}
		}
	}
	return out
}
