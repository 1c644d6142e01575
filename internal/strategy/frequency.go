package strategy

import (
	"fmt"
	"math"
	"sort"

	"roulette-oracle/internal/wheel"
)

const topCount = 12

type scored struct {
	n  int
	sc float64
}

// rankAll scores every outcome 0..36 and sorts them. Equal scores keep
// ascending outcome order.
func rankAll(score func(n int) float64, desc bool) []scored {
	out := make([]scored, wheel.Slots)
	for n := range out {
		out[n] = scored{n: n, sc: score(n)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].sc > out[j].sc
		}
		return out[i].sc < out[j].sc
	})
	return out
}

func numbersOf(s []scored, limit int) []int {
	if len(s) > limit {
		s = s[:limit]
	}
	out := make([]int, len(s))
	for i, x := range s {
		out[i] = x.n
	}
	return out
}

func hotNumbers(h []int) (Result, bool) {
	w := wheel.Tail(h, 50)
	if len(w) < 5 {
		return Result{}, false
	}
	f := wheel.Tally(w)
	exp := math.Max(0.01, float64(len(w))/wheel.Slots)
	ranked := rankAll(func(n int) float64 { return float64(f[n]) / exp }, true)
	top := ranked[0]
	return Result{
		Numbers:    numbersOf(ranked, topCount),
		Confidence: clamp(round(top.sc*28+float64(len(w))/4), 90),
		Reasoning: fmt.Sprintf("Top %d most frequent in last %d spins. Hottest: %d with %d hits, %.1f× the uniform expectation.",
			topCount, len(w), top.n, f[top.n], top.sc),
	}, true
}

func coldNumbers(h []int) (Result, bool) {
	w := wheel.Tail(h, 80)
	if len(w) < 10 {
		return Result{}, false
	}
	f := wheel.Tally(w)
	ranked := rankAll(func(n int) float64 { return float64(f[n]) }, false)
	return Result{
		Numbers:    numbersOf(ranked, topCount),
		Confidence: clamp(round(18+float64(len(w))/6), 68),
		Reasoning: fmt.Sprintf("%d least-seen numbers in last %d spins. Coldest: %d with %d hits.",
			topCount, len(w), ranked[0].n, f[ranked[0].n]),
	}, true
}

func gapAnalysis(h []int) (Result, bool) {
	if len(h) < 15 {
		return Result{}, false
	}
	var seen [wheel.Slots]int
	for i := range seen {
		seen[i] = -1
	}
	for i, n := range h {
		seen[n] = i
	}
	ranked := rankAll(func(n int) float64 {
		if seen[n] < 0 {
			return float64(len(h) + 99)
		}
		return float64(len(h) - 1 - seen[n])
	}, true)
	top := ranked[0]
	return Result{
		Numbers:    numbersOf(ranked, topCount),
		Confidence: clamp(round(26+top.sc*1.5), 76),
		Reasoning: fmt.Sprintf("%d absent for %.0f spins (%.0f%% of session); uniform expectation is one hit per 37.",
			top.n, top.sc, round(top.sc/float64(len(h))*100)),
	}, true
}
