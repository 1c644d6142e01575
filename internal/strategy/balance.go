package strategy

import (
	"fmt"
	"math"
	"strings"

	"roulette-oracle/internal/wheel"
)

var colourNames = map[wheel.Color]string{
	wheel.Red:   "Red",
	wheel.Black: "Black",
	wheel.Green: "Green",
}

func colourStreak(p Params, h []int) (Result, bool) {
	if len(h) < 5 {
		return Result{}, false
	}
	last := wheel.ColorOf(h[len(h)-1])
	streak := 0
	for i := len(h) - 1; i >= 0 && wheel.ColorOf(h[i]) == last; i-- {
		streak++
	}
	reversal := streak >= p.StreakReversal
	target := last
	if reversal {
		target = wheel.Opposite(last)
	}
	nums := wheel.ColorMembers(target)
	if reversal {
		return Result{
			Numbers:    nums,
			Confidence: clamp(float64(38+streak*7), 74),
			Reasoning: fmt.Sprintf("%s streak of %d; reversal to %s predicted.",
				colourNames[last], streak, colourNames[target]),
		}, true
	}
	return Result{
		Numbers:    nums,
		Confidence: clamp(float64(26+streak*5), 54),
		Reasoning:  fmt.Sprintf("%s momentum: %d in a row; continuation predicted.", colourNames[last], streak),
	}, true
}

// lagging returns the groups 1..3 sharing the minimum count.
func lagging(cnt [4]int) []int {
	mn := min(cnt[1], cnt[2], cnt[3])
	var due []int
	for k := 1; k <= 3; k++ {
		if cnt[k] == mn {
			due = append(due, k)
		}
	}
	return due
}

func joinInts(ns []int, sep string) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, sep)
}

func dozenRotation(h []int) (Result, bool) {
	if len(h) < 10 {
		return Result{}, false
	}
	var dozens []int
	for _, n := range h {
		if d := wheel.Dozen(n); d > 0 {
			dozens = append(dozens, d)
		}
	}
	if len(dozens) < 6 {
		return Result{}, false
	}
	w := wheel.Tail(dozens, 24)
	var cnt [4]int
	for _, d := range w {
		cnt[d]++
	}
	due := lagging(cnt)
	var nums []int
	for _, d := range due {
		nums = append(nums, wheel.DozenMembers(d)...)
	}
	return Result{
		Numbers:    nums,
		Confidence: clamp(float64(32+len(w)), 72),
		Reasoning: fmt.Sprintf("Dozen %s underrepresented: %d hits (expected ~%.0f in %d non-zero spins).",
			joinInts(due, " & "), cnt[due[0]], round(float64(len(w))/3), len(w)),
	}, true
}

func columnCycle(h []int) (Result, bool) {
	if len(h) < 12 {
		return Result{}, false
	}
	var cols []int
	for _, n := range h {
		if c := wheel.Column(n); c > 0 {
			cols = append(cols, c)
		}
	}
	w := wheel.Tail(cols, 30)
	if len(w) < 8 {
		return Result{}, false
	}
	var cnt [4]int
	for _, c := range w {
		cnt[c]++
	}
	due := lagging(cnt)
	var nums []int
	for _, c := range due {
		nums = append(nums, wheel.ColumnMembers(c)...)
	}
	return Result{
		Numbers:    nums,
		Confidence: clamp(float64(28+len(w)), 67),
		Reasoning: fmt.Sprintf("Column %s underperforming: %d hits (expected ~%.0f in %d spins).",
			joinInts(due, " & "), cnt[due[0]], round(float64(len(w))/3), len(w)),
	}, true
}

func evenOddShift(p Params, h []int) (Result, bool) {
	if len(h) < 8 {
		return Result{}, false
	}
	nz := wheel.Tail(wheel.NonZero(h), 20)
	if len(nz) < 6 {
		return Result{}, false
	}
	ev := 0
	for _, n := range nz {
		if wheel.IsEven(n) {
			ev++
		}
	}
	ep := float64(ev) / float64(len(nz))
	var (
		even   bool
		reason string
	)
	switch {
	case ep > p.EvenHigh:
		reason = fmt.Sprintf("Even dominance: %.0f%% in last %d non-zero spins; odd correction predicted.", round(ep*100), len(nz))
	case ep < p.EvenLow:
		even = true
		reason = fmt.Sprintf("Odd dominance: %.0f%% in last %d non-zero spins; even correction predicted.", round((1-ep)*100), len(nz))
	default:
		even = ep >= 0.5
		lean, share := "odd", 1-ep
		if even {
			lean, share = "even", ep
		}
		reason = fmt.Sprintf("Slight %s lean (%.0f%%) continuing.", lean, round(share*100))
	}
	pred := wheel.IsOdd
	if even {
		pred = wheel.IsEven
	}
	return Result{
		Numbers:    wheel.Members(pred),
		Confidence: clamp(round(24+math.Abs(ep-0.5)*90), 66),
		Reasoning:  reason,
	}, true
}

func highLowBalance(p Params, h []int) (Result, bool) {
	if len(h) < 10 {
		return Result{}, false
	}
	nz := wheel.Tail(wheel.NonZero(h), 24)
	if len(nz) < 8 {
		return Result{}, false
	}
	lc := 0
	for _, n := range nz {
		if wheel.IsLow(n) {
			lc++
		}
	}
	lp := float64(lc) / float64(len(nz))
	var low bool
	switch {
	case lp < p.LowLow:
		low = true
	case lp <= p.LowHigh:
		low = lp >= 0.5
	}
	pred, label := wheel.IsHigh, "19-36"
	if low {
		pred, label = wheel.IsLow, "1-18"
	}
	return Result{
		Numbers:    wheel.Members(pred),
		Confidence: clamp(round(22+math.Abs(lp-0.5)*80), 63),
		Reasoning: fmt.Sprintf("%s predicted. Low: %d, High: %d in last %d non-zero spins.",
			label, lc, len(nz)-lc, len(nz)),
	}, true
}
