package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	sessionsTable = "oracle_sessions"
	qValuesTable  = "oracle_q_values"

	colID        = "id"
	colHistory   = "history"
	colEpsilon   = "epsilon"
	colUpdates   = "updates"
	colUpdatedAt = "updated_at"

	colSessionID = "session_id"
	colState     = "state"
	colAction    = "action"
	colQ         = "q"

	// q rows per INSERT; four params each keeps well under the 65535 limit.
	qInsertBatch = 1000
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PGStore keeps sessions in postgres. A snapshot is one row in
// oracle_sessions plus one row per (state, action) Q-value.
type PGStore struct {
	Pool *pgxpool.Pool
	tx   trm.Manager
}

func NewPG(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	m, err := manager.New(trmpgx.NewDefaultFactory(pool))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("tx manager: %w", err)
	}
	return &PGStore{Pool: pool, tx: m}, nil
}

func (s *PGStore) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *PGStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

func (s *PGStore) conn(ctx context.Context) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, s.Pool)
}

func (s *PGStore) Save(ctx context.Context, snap Snapshot) error {
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now().UTC()
	}
	history := make([]int32, len(snap.History))
	for i, n := range snap.History {
		history[i] = int32(n)
	}
	return s.tx.Do(ctx, func(ctx context.Context) error {
		upsert := psql.Insert(sessionsTable).
			Columns(colID, colHistory, colEpsilon, colUpdates, colUpdatedAt).
			Values(snap.SessionID, history, snap.Epsilon, snap.Updates, snap.UpdatedAt).
			Suffix("ON CONFLICT (" + colID + ") DO UPDATE SET " +
				colHistory + " = EXCLUDED." + colHistory + ", " +
				colEpsilon + " = EXCLUDED." + colEpsilon + ", " +
				colUpdates + " = EXCLUDED." + colUpdates + ", " +
				colUpdatedAt + " = EXCLUDED." + colUpdatedAt)
		if err := s.exec(ctx, upsert); err != nil {
			return fmt.Errorf("upsert session: %w", err)
		}

		if snap.Partial {
			return s.replaceStates(ctx, snap, snap.Changed)
		}
		wipe := psql.Delete(qValuesTable).Where(sq.Eq{colSessionID: snap.SessionID})
		if err := s.exec(ctx, wipe); err != nil {
			return fmt.Errorf("clear q values: %w", err)
		}
		return s.insertRows(ctx, snap, maps.Keys(snap.QTable))
	})
}

// replaceStates rewrites the q rows of the given states only. States no
// longer in the snapshot lose their rows.
func (s *PGStore) replaceStates(ctx context.Context, snap Snapshot, states []string) error {
	for len(states) > 0 {
		n := min(len(states), qInsertBatch)
		chunk := states[:n]
		states = states[n:]
		del := psql.Delete(qValuesTable).Where(sq.Eq{colSessionID: snap.SessionID, colState: chunk})
		if err := s.exec(ctx, del); err != nil {
			return fmt.Errorf("clear changed q values: %w", err)
		}
		if err := s.insertRows(ctx, snap, slices.Values(chunk)); err != nil {
			return err
		}
	}
	return nil
}

func (s *PGStore) insertRows(ctx context.Context, snap Snapshot, states iter.Seq[string]) error {
	insert := psql.Insert(qValuesTable).Columns(colSessionID, colState, colAction, colQ)
	pending := 0
	for state := range states {
		for action, q := range snap.QTable[state] {
			insert = insert.Values(snap.SessionID, state, action, q)
			pending++
			if pending == qInsertBatch {
				if err := s.exec(ctx, insert); err != nil {
					return fmt.Errorf("insert q values: %w", err)
				}
				insert = psql.Insert(qValuesTable).Columns(colSessionID, colState, colAction, colQ)
				pending = 0
			}
		}
	}
	if pending > 0 {
		if err := s.exec(ctx, insert); err != nil {
			return fmt.Errorf("insert q values: %w", err)
		}
	}
	return nil
}

func (s *PGStore) Load(ctx context.Context, id string) (Snapshot, error) {
	query := psql.Select(colHistory, colEpsilon, colUpdates, colUpdatedAt).
		From(sessionsTable).
		Where(sq.Eq{colID: id})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{SessionID: id, QTable: map[string]map[string]float64{}}
	var history []int32
	err = s.conn(ctx).QueryRow(ctx, sqlStr, args...).Scan(&history, &snap.Epsilon, &snap.Updates, &snap.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, err
	}
	snap.History = make([]int, len(history))
	for i, n := range history {
		snap.History[i] = int(n)
	}

	rowsQuery := psql.Select(colState, colAction, colQ).
		From(qValuesTable).
		Where(sq.Eq{colSessionID: id})
	sqlStr, args, err = rowsQuery.ToSql()
	if err != nil {
		return Snapshot{}, err
	}
	rows, err := s.conn(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var state, action string
		var q float64
		if err := rows.Scan(&state, &action, &q); err != nil {
			return Snapshot{}, err
		}
		row, ok := snap.QTable[state]
		if !ok {
			row = map[string]float64{}
			snap.QTable[state] = row
		}
		row[action] = q
	}
	return snap, rows.Err()
}

// Delete removes the session; its q values go with it via ON DELETE CASCADE.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	sqlStr, args, err := psql.Delete(sessionsTable).Where(sq.Eq{colID: id}).ToSql()
	if err != nil {
		return err
	}
	tag, err := s.conn(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) exec(ctx context.Context, q sq.Sqlizer) error {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = s.conn(ctx).Exec(ctx, sqlStr, args...)
	return err
}
