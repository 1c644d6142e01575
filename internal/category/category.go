package category

import (
	"fmt"
	"sort"
	"strings"

	"roulette-oracle/internal/wheel"
)

type ID string

const (
	Red    ID = "red"
	Black  ID = "black"
	Even   ID = "even"
	Odd    ID = "odd"
	Low    ID = "low"
	High   ID = "high"
	Dozen1 ID = "d1"
	Dozen2 ID = "d2"
	Dozen3 ID = "d3"
	Col1   ID = "c1"
	Col2   ID = "c2"
	Col3   ID = "c3"
	Line   ID = "line"
	Corner ID = "corner"
	Split  ID = "split"
)

const (
	recentWindow = 20
	evenBonus    = 0.25
	dozenBonus   = 0.20
)

type Category struct {
	ID       ID      `json:"id"`
	Label    string  `json:"label"`
	Group    string  `json:"group"`
	Members  []int   `json:"members"`
	Payout   string  `json:"payout"`
	Coverage float64 `json:"coverage"`
	Score    float64 `json:"score"`
}

type spec struct {
	id       ID
	label    string
	group    string
	members  []int
	payout   string
	coverage float64
}

var fixed = []spec{
	{Red, "Red (18)", "COLOUR", wheel.ColorMembers(wheel.Red), "1:1", 48.6},
	{Black, "Black (18)", "COLOUR", wheel.ColorMembers(wheel.Black), "1:1", 48.6},
	{Even, "Even (18)", "PARITY", wheel.Members(wheel.IsEven), "1:1", 48.6},
	{Odd, "Odd (18)", "PARITY", wheel.Members(wheel.IsOdd), "1:1", 48.6},
	{Low, "1-18", "RANGE", wheel.Members(wheel.IsLow), "1:1", 48.6},
	{High, "19-36", "RANGE", wheel.Members(wheel.IsHigh), "1:1", 48.6},
	{Dozen1, "1st Dozen", "DOZEN", wheel.DozenMembers(1), "2:1", 32.4},
	{Dozen2, "2nd Dozen", "DOZEN", wheel.DozenMembers(2), "2:1", 32.4},
	{Dozen3, "3rd Dozen", "DOZEN", wheel.DozenMembers(3), "2:1", 32.4},
	{Col1, "Column 1", "COLUMN", wheel.ColumnMembers(1), "2:1", 32.4},
	{Col2, "Column 2", "COLUMN", wheel.ColumnMembers(2), "2:1", 32.4},
	{Col3, "Column 3", "COLUMN", wheel.ColumnMembers(3), "2:1", 32.4},
}

// Members returns the member set of a fixed group.
func Members(id ID) ([]int, bool) {
	for _, s := range fixed {
		if s.id == id {
			return s.members, true
		}
	}
	return nil, false
}

// Score ranks every group against the consensus top list and the trailing
// window of history. The result is sorted by score, highest first.
func Score(top []int, h []int) []Category {
	inTop := map[int]bool{}
	for _, n := range top {
		inTop[n] = true
	}
	b := recentBonuses(wheel.Tail(h, recentWindow))

	out := make([]Category, 0, len(fixed)+3)
	for _, s := range fixed {
		out = append(out, s.build(match(s.members, inTop)+b[s.id]))
	}
	line, sc := best(Lines(), inTop)
	out = append(out, lineSpec(line).build(sc))
	corner, sc := best(Corners, inTop)
	out = append(out, cornerSpec(corner).build(sc))
	split, sc := best(Splits(), inTop)
	out = append(out, splitSpec(split).build(sc))

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func (s spec) build(score float64) Category {
	return Category{
		ID:       s.id,
		Label:    s.label,
		Group:    s.group,
		Members:  append([]int(nil), s.members...),
		Payout:   s.payout,
		Coverage: s.coverage,
		Score:    score,
	}
}

func match(members []int, inTop map[int]bool) float64 {
	if len(members) == 0 {
		return 0
	}
	hits := 0
	for _, n := range members {
		if inTop[n] {
			hits++
		}
	}
	return float64(hits) / float64(len(members))
}

// best returns the first candidate with the strictly highest match.
func best(candidates [][]int, inTop map[int]bool) ([]int, float64) {
	var pick []int
	bestSc := -1.0
	for _, c := range candidates {
		if sc := match(c, inTop); sc > bestSc {
			pick, bestSc = c, sc
		}
	}
	return pick, bestSc
}

// Best picks the highest-matching line, corner or split for top.
func Best(id ID, top []int) ([]int, bool) {
	inTop := map[int]bool{}
	for _, n := range top {
		inTop[n] = true
	}
	var pick []int
	switch id {
	case Line:
		pick, _ = best(Lines(), inTop)
	case Corner:
		pick, _ = best(Corners, inTop)
	case Split:
		pick, _ = best(Splits(), inTop)
	default:
		return nil, false
	}
	return pick, true
}

func recentBonuses(w []int) map[ID]float64 {
	n := float64(max(1, len(w)))
	var reds, evens, lows int
	var dz [4]int
	for _, v := range w {
		if wheel.IsRed(v) {
			reds++
		}
		if wheel.IsEven(v) {
			evens++
		}
		if wheel.IsLow(v) {
			lows++
		}
		dz[wheel.Dozen(v)]++
	}
	out := map[ID]float64{}
	rate := func(c int, below, above ID) {
		r := float64(c) / n
		if r < 0.4 {
			out[below] = evenBonus
		}
		if r > 0.6 {
			out[above] = evenBonus
		}
	}
	rate(reds, Red, Black)
	rate(evens, Even, Odd)
	rate(lows, Low, High)
	if dz[1] < dz[2] && dz[1] < dz[3] {
		out[Dozen1] = dozenBonus
	}
	if dz[2] < dz[1] && dz[2] < dz[3] {
		out[Dozen2] = dozenBonus
	}
	if dz[3] < dz[1] && dz[3] < dz[2] {
		out[Dozen3] = dozenBonus
	}
	return out
}

func lineSpec(m []int) spec {
	return spec{Line, fmt.Sprintf("Line %d-%d", m[0], m[len(m)-1]), "LINE(6)", m, "5:1", 16.2}
}

func cornerSpec(m []int) spec {
	return spec{Corner, "Corner " + joinSlash(m), "CORNER(4)", m, "8:1", 10.8}
}

func splitSpec(m []int) spec {
	return spec{Split, "Split " + joinSlash(m), "SPLIT(2)", m, "17:1", 5.4}
}

func joinSlash(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, "/")
}
