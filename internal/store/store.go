package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// Snapshot is the persisted state of one prediction session: the spin
// history plus everything the learning agent needs to resume.
type Snapshot struct {
	SessionID string                        `json:"session_id"`
	History   []int                         `json:"history"`
	QTable    map[string]map[string]float64 `json:"q_table"`
	Epsilon   float64                       `json:"epsilon"`
	Updates   int64                         `json:"updates"`
	UpdatedAt time.Time                     `json:"updated_at"`

	// With Partial set, only the QTable states in Changed differ from the
	// last successful save. A changed state missing from QTable was
	// evicted. Stores that write whole snapshots ignore both fields.
	Changed []string `json:"-"`
	Partial bool     `json:"-"`
}

// Store persists session snapshots. Load returns ErrNotFound for unknown ids.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, id string) (Snapshot, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close()
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.History = append([]int(nil), s.History...)
	out.Changed = nil
	out.Partial = false
	if s.QTable != nil {
		out.QTable = make(map[string]map[string]float64, len(s.QTable))
		for state, row := range s.QTable {
			cp := make(map[string]float64, len(row))
			for action, q := range row {
				cp[action] = q
			}
			out.QTable[state] = cp
		}
	}
	return out
}
