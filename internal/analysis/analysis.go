package analysis

import (
	"math"

	"roulette-oracle/internal/wheel"
)

// MinSpins is the history length below which no summary is produced.
const MinSpins = 5

const (
	biasWindow     = 20
	biasTolerance  = 5.0
	trendTolerance = 3.0
	hotRatio       = 1.5
	coldRatio      = 0.5
	coldMinSpins   = 15
)

const (
	Up   = "▲"
	Down = "▼"
	Flat = "≈"
)

type Bias struct {
	Label     string  `json:"label"`
	Percent   float64 `json:"percent"`
	Expected  float64 `json:"expected"`
	Direction string  `json:"direction"`
}

type Tier string

const (
	TierHot     Tier = "hot"
	TierCold    Tier = "cold"
	TierNeutral Tier = "neutral"
)

type Cell struct {
	Number int         `json:"number"`
	Color  wheel.Color `json:"color"`
	Count  int         `json:"count"`
	Ratio  float64     `json:"ratio"`
	Tier   Tier        `json:"tier"`
}

type Trend struct {
	Label     string  `json:"label"`
	Percent   int     `json:"percent"`
	Expected  float64 `json:"expected"`
	Direction string  `json:"direction"`
}

type Summary struct {
	Total          int     `json:"total"`
	Hottest        int     `json:"hottest"`
	HottestCount   int     `json:"hottest_count"`
	Coldest        int     `json:"coldest"`
	ColdestCount   int     `json:"coldest_count"`
	LongestAbsent  int     `json:"longest_absent"`
	LongestAbsence int     `json:"longest_absence"`
	Red            int     `json:"red"`
	Black          int     `json:"black"`
	Zero           int     `json:"zero"`
	Even           int     `json:"even"`
	Odd            int     `json:"odd"`
	Low            int     `json:"low"`
	High           int     `json:"high"`
	ZeroPercent    float64 `json:"zero_percent"`
	Frequency      []int   `json:"frequency"`
	Bias           []Bias  `json:"bias"`
	Heatmap        []Cell  `json:"heatmap"`
	Trends         []Trend `json:"trends"`
}

// Summarize computes session statistics. It reports false when h holds
// fewer than MinSpins outcomes.
func Summarize(h []int) (Summary, bool) {
	if len(h) < MinSpins {
		return Summary{}, false
	}
	freq := wheel.Tally(h)
	nz := wheel.NonZero(h)
	s := Summary{Total: len(h), Frequency: freq[:]}

	for n := 1; n < wheel.Slots; n++ {
		if freq[n] >= freq[s.Hottest] {
			s.Hottest = n
		}
		if freq[n] <= freq[s.Coldest] {
			s.Coldest = n
		}
	}
	s.HottestCount, s.ColdestCount = freq[s.Hottest], freq[s.Coldest]
	s.LongestAbsent, s.LongestAbsence = longestAbsence(h)

	for _, n := range h {
		switch wheel.ColorOf(n) {
		case wheel.Red:
			s.Red++
		case wheel.Black:
			s.Black++
		default:
			s.Zero++
		}
	}
	for _, n := range nz {
		if wheel.IsEven(n) {
			s.Even++
		}
		if wheel.IsLow(n) {
			s.Low++
		}
	}
	s.Odd = len(nz) - s.Even
	s.High = len(nz) - s.Low
	s.ZeroPercent = float64(s.Zero) / float64(len(h)) * 100

	s.Bias = bias(wheel.Tail(h, biasWindow))
	s.Heatmap = heatmap(h, freq)
	s.Trends = trends(s, len(nz))
	return s, true
}

// longestAbsence treats a never-seen outcome as absent for the whole
// session. The lowest outcome wins ties.
func longestAbsence(h []int) (int, int) {
	var seen [wheel.Slots]int
	for i := range seen {
		seen[i] = -1
	}
	for i, n := range h {
		seen[n] = i
	}
	num, gap := 0, -1
	for n := range seen {
		g := len(h)
		if seen[n] >= 0 {
			g = len(h) - 1 - seen[n]
		}
		if g > gap {
			num, gap = n, g
		}
	}
	return num, gap
}

func direction(dev, tol float64) string {
	switch {
	case dev > tol:
		return Up
	case dev < -tol:
		return Down
	default:
		return Flat
	}
}

func bias(w []int) []Bias {
	nz := wheel.NonZero(w)
	t := float64(max(1, len(w)))
	tnz := float64(max(1, len(nz)))
	var reds, evens, lows int
	var dz [4]int
	for _, n := range w {
		if wheel.IsRed(n) {
			reds++
		}
		dz[wheel.Dozen(n)]++
	}
	for _, n := range nz {
		if wheel.IsEven(n) {
			evens++
		}
		if wheel.IsLow(n) {
			lows++
		}
	}
	rR, eR, lR := float64(reds)/t, float64(evens)/tnz, float64(lows)/tnz
	items := []struct {
		label string
		p     float64
		exp   float64
	}{
		{"Red", rR * 100, 48.6},
		{"Black", (1 - rR) * 100, 48.6},
		{"Even", eR * 100, 48.6},
		{"Odd", (1 - eR) * 100, 48.6},
		{"1-18", lR * 100, 48.6},
		{"19-36", (1 - lR) * 100, 48.6},
		{"D1", float64(dz[1]) / t * 100, 32.4},
		{"D2", float64(dz[2]) / t * 100, 32.4},
		{"D3", float64(dz[3]) / t * 100, 32.4},
	}
	out := make([]Bias, len(items))
	for i, it := range items {
		out[i] = Bias{Label: it.label, Percent: it.p, Expected: it.exp, Direction: direction(it.p-it.exp, biasTolerance)}
	}
	return out
}

func heatmap(h []int, freq [wheel.Slots]int) []Cell {
	exp := math.Max(0.01, float64(len(h))/wheel.Slots)
	out := make([]Cell, wheel.Slots)
	for n := range out {
		r := float64(freq[n]) / exp
		tier := TierNeutral
		switch {
		case r > hotRatio:
			tier = TierHot
		case r < coldRatio && len(h) > coldMinSpins:
			tier = TierCold
		}
		out[n] = Cell{Number: n, Color: wheel.ColorOf(n), Count: freq[n], Ratio: r, Tier: tier}
	}
	return out
}

func pct(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Floor(float64(part)/float64(whole)*100 + 0.5))
}

func trends(s Summary, nonZero int) []Trend {
	items := []Trend{
		{Label: "RED %", Percent: pct(s.Red, s.Total), Expected: 48.6},
		{Label: "EVEN %", Percent: pct(s.Even, nonZero), Expected: 50},
		{Label: "1-18 %", Percent: pct(s.Low, nonZero), Expected: 50},
		{Label: "ZERO %", Percent: pct(s.Zero, s.Total), Expected: 2.7},
	}
	for i := range items {
		dev := float64(items[i].Percent) - items[i].Expected
		items[i].Direction = Flat
		if math.Abs(dev) >= trendTolerance {
			items[i].Direction = direction(dev, 0)
		}
	}
	return items
}
