package strategy

import "fmt"

// Library evaluates the fixed strategy set with one parameter set. It holds
// no mutable state and is safe for concurrent use.
type Library struct {
	params Params
}

func NewLibrary(p Params) *Library {
	return &Library{params: p}
}

var defaultLibrary = NewLibrary(DefaultParams())

func Default() *Library {
	return defaultLibrary
}

func (l *Library) Params() Params {
	return l.params
}

// Evaluate runs a single strategy. A panic inside it comes back as a
// faulted outcome carrying the panic text.
func (l *Library) Evaluate(id ID, h []int) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			out = Faulted(id, fmt.Sprint(p))
		}
	}()
	var (
		r  Result
		ok bool
	)
	switch id {
	case HotNumbers:
		r, ok = hotNumbers(h)
	case ColdNumbers:
		r, ok = coldNumbers(h)
	case WheelSectorBias:
		r, ok = wheelSectorBias(h)
	case PatternRepeat:
		r, ok = patternRepeat(h)
	case ColourStreak:
		r, ok = colourStreak(l.params, h)
	case DozenRotation:
		r, ok = dozenRotation(h)
	case GapAnalysis:
		r, ok = gapAnalysis(h)
	case EvenOddShift:
		r, ok = evenOddShift(l.params, h)
	case HighLowBalance:
		r, ok = highLowBalance(l.params, h)
	case ColumnCycle:
		r, ok = columnCycle(h)
	case RecencyCluster:
		r, ok = recencyCluster(h)
	case FibonacciPositions:
		r, ok = fibonacciPositions(h)
	default:
		panic(fmt.Sprintf("unknown strategy %d", int(id)))
	}
	if !ok {
		return Unavailable(id)
	}
	return Available(id, r)
}

// Evaluate runs id with the default thresholds.
func Evaluate(id ID, h []int) Outcome {
	return defaultLibrary.Evaluate(id, h)
}
