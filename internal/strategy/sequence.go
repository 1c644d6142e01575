package strategy

import (
	"fmt"
	"sort"
	"strings"
)

type follower struct {
	n     int
	count int
}

// followers tallies what came right after every earlier occurrence of the
// trailing seqLen values. Entries are in first-seen order.
func followers(h []int, seqLen int) []follower {
	seq := h[len(h)-seqLen:]
	index := map[int]int{}
	var out []follower
	for i := 0; i+seqLen < len(h); i++ {
		match := true
		for k := 0; k < seqLen; k++ {
			if h[i+k] != seq[k] {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		nx := h[i+seqLen]
		if idx, ok := index[nx]; ok {
			out[idx].count++
			continue
		}
		index[nx] = len(out)
		out = append(out, follower{n: nx, count: 1})
	}
	return out
}

func patternRepeat(h []int) (Result, bool) {
	if len(h) < 8 {
		return Result{}, false
	}
	seqLen := 3
	found := followers(h, seqLen)
	if len(found) == 0 {
		seqLen = 2
		found = followers(h, seqLen)
	}
	if len(found) == 0 {
		return Result{}, false
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].count > found[j].count })
	total := 0
	for _, f := range found {
		total += f.count
	}
	limit := min(len(found), topCount)
	nums := make([]int, limit)
	for i := range nums {
		nums[i] = found[i].n
	}
	parts := make([]string, seqLen)
	for i, n := range h[len(h)-seqLen:] {
		parts[i] = fmt.Sprint(n)
	}
	return Result{
		Numbers:    nums,
		Confidence: clamp(round(30+float64(total)*10), 80),
		Reasoning: fmt.Sprintf("Sequence [%s] seen %d× before (%d-step); numbers that followed it.",
			strings.Join(parts, "→"), total, seqLen),
	}, true
}
