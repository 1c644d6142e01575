package consensus

import (
	"testing"

	"roulette-oracle/internal/strategy"
	"roulette-oracle/internal/wheel"
)

type panickingEvaluator struct {
	target strategy.ID
}

func (p panickingEvaluator) Evaluate(id strategy.ID, h []int) strategy.Outcome {
	if id == p.target {
		panic("boom")
	}
	return strategy.Evaluate(id, h)
}

type fixedEvaluator map[strategy.ID]strategy.Result

func (f fixedEvaluator) Evaluate(id strategy.ID, _ []int) strategy.Outcome {
	r, ok := f[id]
	if !ok {
		return strategy.Unavailable(id)
	}
	return strategy.Available(id, r)
}

func history(n int) []int {
	h := make([]int, n)
	for i := range h {
		h[i] = (i*11 + 5) % wheel.Slots
	}
	return h
}

func TestRunBounds(t *testing.T) {
	agg := New(nil)
	for _, n := range []int{3, 5, 8, 15, 30, 80} {
		rep := agg.Run(history(n))
		if rep.ActiveCount == 0 {
			t.Fatalf("len=%d: expected active strategies", n)
		}
		if len(rep.Predictions) < 12 || len(rep.Predictions) > 18 {
			t.Fatalf("len=%d: prediction count %d outside [12,18]", n, len(rep.Predictions))
		}
		if len(rep.Results) != len(strategy.All) {
			t.Fatalf("len=%d: expected %d results, got %d", n, len(strategy.All), len(rep.Results))
		}
		for i, p := range rep.Predictions {
			if p.Confidence < 12 || p.Confidence > 99 {
				t.Fatalf("len=%d: confidence %d outside [12,99]", n, p.Confidence)
			}
			if i > 0 && rep.Predictions[i-1].Score < p.Score {
				t.Fatalf("len=%d: predictions not sorted", n)
			}
			if p.VoteCount < 1 || p.VoteCount > rep.ActiveCount {
				t.Fatalf("len=%d: vote count %d invalid", n, p.VoteCount)
			}
		}
	}
}

func TestRunEmptyHistory(t *testing.T) {
	rep := New(nil).Run(nil)
	if rep.ActiveCount != 0 || len(rep.Predictions) != 0 {
		t.Fatalf("expected empty report, got %+v", rep)
	}
}

func TestRunIdempotent(t *testing.T) {
	agg := New(nil)
	h := history(40)
	a, b := agg.Run(h), agg.Run(h)
	if len(a.Predictions) != len(b.Predictions) {
		t.Fatalf("prediction count differs")
	}
	for i := range a.Predictions {
		if a.Predictions[i] != b.Predictions[i] {
			t.Fatalf("prediction %d differs: %+v vs %+v", i, a.Predictions[i], b.Predictions[i])
		}
	}
}

func TestFaultIsolation(t *testing.T) {
	h := history(40)
	rep := New(panickingEvaluator{target: strategy.HotNumbers}).Run(h)
	if rep.Results[0].Status != strategy.StatusFaulted || rep.Results[0].Reason != "boom" {
		t.Fatalf("expected faulted hot numbers, got %+v", rep.Results[0])
	}
	if rep.ActiveCount != len(strategy.All)-1 {
		t.Fatalf("expected %d active, got %d", len(strategy.All)-1, rep.ActiveCount)
	}
	if len(rep.Predictions) == 0 {
		t.Fatalf("remaining strategies must still vote")
	}
}

func TestOutOfRangeNumbersFault(t *testing.T) {
	rep := New(fixedEvaluator{
		strategy.HotNumbers: {Numbers: []int{40}, Confidence: 50},
	}).Run(history(10))
	if rep.Results[0].Status != strategy.StatusFaulted {
		t.Fatalf("expected faulted result, got %+v", rep.Results[0])
	}
}

func TestWeightingAndTies(t *testing.T) {
	rep := New(fixedEvaluator{
		strategy.HotNumbers:  {Numbers: []int{7, 3}, Confidence: 50},
		strategy.ColdNumbers: {Numbers: []int{3, 9, 1}, Confidence: 30},
	}).Run(history(10))

	// 3: 300+120, 7: 300, 1 and 9: 120 each (ascending on tie).
	want := []int{3, 7, 1, 9}
	got := rep.Top()
	if len(got) != len(want) {
		t.Fatalf("top = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("top = %v, want %v", got, want)
		}
	}
	if rep.Predictions[0].Confidence != 92 || rep.Predictions[0].VoteCount != 2 {
		t.Fatalf("unexpected leader %+v", rep.Predictions[0])
	}
	if rep.Predictions[1].Confidence != 69 {
		t.Fatalf("second confidence = %d, want 69", rep.Predictions[1].Confidence)
	}
}

func TestPredictionCount(t *testing.T) {
	cases := map[int]int{0: 0, 5: 5, 12: 12, 20: 12, 37: 12, 40: 13, 56: 18, 100: 18}
	for voted, want := range cases {
		if got := PredictionCount(voted); got != want {
			t.Fatalf("PredictionCount(%d) = %d, want %d", voted, got, want)
		}
	}
}
