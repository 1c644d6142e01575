package agent

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"time"
)

var ErrInvalidParams = errors.New("invalid_agent_params")

// Params are the learning hyperparameters. MaxStates of zero leaves the
// Q-table unbounded.
type Params struct {
	Alpha        float64 `yaml:"alpha" json:"alpha"`
	Gamma        float64 `yaml:"gamma" json:"gamma"`
	Epsilon      float64 `yaml:"epsilon" json:"epsilon"`
	EpsilonMin   float64 `yaml:"epsilon_min" json:"epsilon_min"`
	EpsilonDecay float64 `yaml:"epsilon_decay" json:"epsilon_decay"`
	MaxStates    int     `yaml:"max_states" json:"max_states"`
}

func DefaultParams() Params {
	return Params{
		Alpha:        0.15,
		Gamma:        0.90,
		Epsilon:      0.90,
		EpsilonMin:   0.05,
		EpsilonDecay: 0.97,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Alpha <= 0 || p.Alpha > 1,
		p.Gamma < 0 || p.Gamma > 1,
		p.EpsilonMin < 0 || p.EpsilonMin > p.Epsilon || p.Epsilon > 1,
		p.EpsilonDecay <= 0 || p.EpsilonDecay > 1,
		p.MaxStates < 0:
		return ErrInvalidParams
	}
	return nil
}

// minTransitionHistory is the shortest history that yields a transition:
// three spins to encode a state plus the outcome that follows it.
const minTransitionHistory = 4

// Agent is a tabular Q-learner over bet categories. It is not safe for
// concurrent use; session.Session serializes access.
type Agent struct {
	params  Params
	table   *QTable
	epsilon float64
	updates int64
	rng     *rand.Rand
}

// New builds an agent. A nil rng seeds one from the clock.
func New(p Params, rng *rand.Rand) (*Agent, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	t, err := NewQTable(p.MaxStates)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Agent{params: p, table: t, epsilon: p.Epsilon, rng: rng}, nil
}

func (a *Agent) Params() Params    { return a.params }
func (a *Agent) Epsilon() float64  { return a.epsilon }
func (a *Agent) Updates() int64    { return a.updates }
func (a *Agent) StateCount() int   { return a.table.Len() }
func (a *Agent) AverageQ() float64 { return a.table.Average() }

func (a *Agent) Q(state string, act Action) float64 {
	return a.table.Value(state, act)
}

// Reset empties the table and restores the initial exploration rate.
func (a *Agent) Reset() {
	a.table.clear()
	a.epsilon = a.params.Epsilon
	a.updates = 0
}

// learn is the only writer of Q-values, epsilon and the update counter.
func (a *Agent) learn(state string, act Action, reward float64, next string) {
	maxNext := math.Inf(-1)
	for _, x := range Actions {
		maxNext = math.Max(maxNext, a.table.Value(next, x))
	}
	cur := a.table.Value(state, act)
	a.table.set(state, act, cur+a.params.Alpha*(reward+a.params.Gamma*maxNext-cur))
	a.updates++
	a.epsilon = math.Max(a.params.EpsilonMin, a.epsilon*a.params.EpsilonDecay)
}

func reward(hit bool) float64 {
	if hit {
		return 1
	}
	return -0.1
}

func (a *Agent) greedy(state string) Action {
	best := Actions[0]
	bestQ := a.table.Value(state, best)
	for _, x := range Actions[1:] {
		if q := a.table.Value(state, x); q > bestQ {
			best, bestQ = x, q
		}
	}
	return best
}

func (a *Agent) choose(state string) Action {
	if a.rng.Float64() < a.epsilon {
		return Actions[a.rng.Intn(len(Actions))]
	}
	return a.greedy(state)
}

// Train replays every transition of h once with epsilon-greedy selection.
// It performs max(0, len(h)-4) updates.
func (a *Agent) Train(h []int) {
	if len(h) < minTransitionHistory {
		return
	}
	for i := 3; i < len(h)-1; i++ {
		prefix := h[:i]
		state := Encode(prefix)
		act := a.choose(state)
		a.learn(state, act, reward(covers(act, prefix, h[i])), Encode(h[:i+1]))
	}
}

// Stale reports whether the agent has seen fewer transitions than h holds.
func (a *Agent) Stale(h []int) bool {
	return a.updates < int64(len(h)-minTransitionHistory)
}

// Sync retrains from an empty table when the agent is behind h. It reports
// whether training ran.
func (a *Agent) Sync(h []int) bool {
	if !a.Stale(h) {
		return false
	}
	a.Reset()
	a.Train(h)
	return true
}

// Observe is the live step for a newly recorded outcome: the greedy action
// for the pre-outcome state is scored against it. before must not include
// outcome.
func (a *Agent) Observe(before []int, outcome int) (Action, bool) {
	if len(before) < minTransitionHistory {
		return "", false
	}
	state := Encode(before)
	next := make([]int, len(before)+1)
	copy(next, before)
	next[len(before)] = outcome
	act := a.greedy(state)
	a.learn(state, act, reward(covers(act, before, outcome)), Encode(next))
	return act, true
}

type Ranked struct {
	Action Action  `json:"action"`
	Label  string  `json:"label"`
	Q      float64 `json:"q"`
}

// Best ranks the top n actions for state by value, enumeration order on
// ties.
func (a *Agent) Best(state string, n int) []Ranked {
	out := make([]Ranked, len(Actions))
	for i, x := range Actions {
		out[i] = Ranked{Action: x, Label: x.Label(), Q: a.table.Value(state, x)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Q > out[j].Q })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Confidence maps a Q-value to a 1..99 display percentage.
func Confidence(q float64) int {
	c := int(math.Floor((q+1)/2*100 + 0.5))
	return max(1, min(99, c))
}

type State struct {
	QTable  map[string]map[string]float64 `json:"qtable"`
	Epsilon float64                       `json:"epsilon"`
	Updates int64                         `json:"updates"`
}

func (a *Agent) Snapshot() State {
	return State{QTable: a.table.Dump(), Epsilon: a.epsilon, Updates: a.updates}
}

// Changes reports the states whose Q-values changed since the last Commit,
// or full when the whole table needs writing.
func (a *Agent) Changes() (states []string, full bool) {
	return a.table.Changes()
}

// Commit records that the current table has been persisted.
func (a *Agent) Commit() {
	a.table.Commit()
}

// Restore loads persisted state. A zero or out-of-range epsilon keeps the
// configured initial rate. The loaded table counts as persisted.
func (a *Agent) Restore(s State) {
	a.table.load(s.QTable)
	a.table.Commit()
	a.epsilon = a.params.Epsilon
	if s.Epsilon > 0 && s.Epsilon <= 1 {
		a.epsilon = math.Max(a.params.EpsilonMin, s.Epsilon)
	}
	a.updates = max(0, s.Updates)
}
