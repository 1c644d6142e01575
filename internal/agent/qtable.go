package agent

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

type row map[Action]float64

// QTable maps state keys to per-action values. With a positive capacity the
// least recently updated state is evicted once the table is full.
//
// The table also records which states changed since the last Commit so a
// store can write just those rows. rewrite is set when the change set no
// longer describes the difference, after a clear or a load.
type QTable struct {
	capacity int
	rows     map[string]row
	bounded  *lru.Cache[string, row]

	changed map[string]struct{}
	rewrite bool
}

func NewQTable(capacity int) (*QTable, error) {
	t := &QTable{capacity: capacity, changed: map[string]struct{}{}, rewrite: true}
	if err := t.init(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *QTable) init() error {
	if t.capacity > 0 {
		c, err := lru.NewWithEvict[string, row](t.capacity, func(state string, _ row) {
			t.changed[state] = struct{}{}
		})
		if err != nil {
			return err
		}
		t.bounded = c
		t.rows = nil
		return nil
	}
	t.rows = map[string]row{}
	return nil
}

func (t *QTable) peek(state string) (row, bool) {
	if t.bounded != nil {
		return t.bounded.Peek(state)
	}
	r, ok := t.rows[state]
	return r, ok
}

// Value returns Q(state, action), zero when unseen. Reads never change
// eviction order.
func (t *QTable) Value(state string, a Action) float64 {
	r, ok := t.peek(state)
	if !ok {
		return 0
	}
	return r[a]
}

func (t *QTable) set(state string, a Action, v float64) {
	t.changed[state] = struct{}{}
	if t.bounded != nil {
		r, ok := t.bounded.Get(state)
		if !ok {
			r = row{}
		}
		r[a] = v
		t.bounded.Add(state, r)
		return
	}
	r, ok := t.rows[state]
	if !ok {
		r = row{}
		t.rows[state] = r
	}
	r[a] = v
}

func (t *QTable) Len() int {
	if t.bounded != nil {
		return t.bounded.Len()
	}
	return len(t.rows)
}

func (t *QTable) clear() {
	if t.bounded != nil {
		t.bounded.Purge()
	} else {
		t.rows = map[string]row{}
	}
	t.changed = map[string]struct{}{}
	t.rewrite = true
}

// Changes lists the states written or evicted since the last Commit. full
// means the list is not enough and the whole table must be written.
func (t *QTable) Changes() (states []string, full bool) {
	if t.rewrite {
		return nil, true
	}
	states = make([]string, 0, len(t.changed))
	for s := range t.changed {
		states = append(states, s)
	}
	sort.Strings(states)
	return states, false
}

// Commit marks the current table as persisted.
func (t *QTable) Commit() {
	t.changed = map[string]struct{}{}
	t.rewrite = false
}

// Dump copies the table into plain maps for persistence.
func (t *QTable) Dump() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, t.Len())
	each := func(state string, r row) {
		m := make(map[string]float64, len(r))
		for a, v := range r {
			m[string(a)] = v
		}
		out[state] = m
	}
	if t.bounded != nil {
		for _, k := range t.bounded.Keys() {
			if r, ok := t.bounded.Peek(k); ok {
				each(k, r)
			}
		}
		return out
	}
	for k, r := range t.rows {
		each(k, r)
	}
	return out
}

// Average is the mean of every stored value, zero for an empty table.
func (t *QTable) Average() float64 {
	var sum float64
	var n int
	for _, r := range t.Dump() {
		for _, v := range r {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (t *QTable) load(data map[string]map[string]float64) {
	t.clear()
	for state, r := range data {
		for a, v := range r {
			if ValidAction(Action(a)) {
				t.set(state, Action(a), v)
			}
		}
	}
}
