package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"roulette-oracle/internal/agent"
	"roulette-oracle/internal/consensus"
	"roulette-oracle/internal/store"
	"roulette-oracle/internal/strategy"
	"roulette-oracle/internal/stream"
	"roulette-oracle/internal/wheel"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

type SpinPublisher interface {
	Publish(ctx context.Context, ev store.SpinEvent) error
}

type Options struct {
	Agent    agent.Params
	Strategy strategy.Params
	// Seed fixes every session's exploration sequence. Zero seeds from the
	// clock.
	Seed        int64
	EventBuffer int
	Publisher   SpinPublisher
}

func DefaultOptions() Options {
	return Options{Agent: agent.DefaultParams(), Strategy: strategy.DefaultParams()}
}

// Manager caches live sessions and loads the rest from the store on first
// use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	restores singleflight.Group

	store store.Store
	opts  Options
	agg   *consensus.Aggregator
}

func NewManager(st store.Store, opts Options) (*Manager, error) {
	if err := opts.Agent.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Strategy.Validate(); err != nil {
		return nil, err
	}
	return &Manager{
		sessions: map[string]*Session{},
		store:    st,
		opts:     opts,
		agg:      consensus.New(strategy.NewLibrary(opts.Strategy)),
	}, nil
}

func (m *Manager) newSession(id string) (*Session, error) {
	var rng *rand.Rand
	if m.opts.Seed != 0 {
		rng = rand.New(rand.NewSource(m.opts.Seed))
	}
	a, err := agent.New(m.opts.Agent, rng)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:     id,
		agent:  a,
		agg:    m.agg,
		store:  m.store,
		pub:    m.opts.Publisher,
		events: stream.NewBuffer(m.opts.EventBuffer),
	}, nil
}

func (m *Manager) Create(ctx context.Context) (*Session, error) {
	s, err := m.newSession(store.NewID())
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	err = s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	log.Info().Str("session_id", s.ID).Msg("session created")
	return s, nil
}

// Get returns a cached session or restores it from the store. A restored
// agent that lags its history is retrained before the session is shared.
// Concurrent restores of one id share a single load; m.mu is never held
// while loading.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if !store.ValidID(id) {
		return nil, ErrNotFound
	}
	if s, ok := m.cached(id); ok {
		return s, nil
	}
	v, err, _ := m.restores.Do(id, func() (any, error) {
		if s, ok := m.cached(id); ok {
			return s, nil
		}
		s, err := m.restore(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		if existing, ok := m.sessions[id]; ok {
			s.events.Close()
			return existing, nil
		}
		m.sessions[id] = s
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (m *Manager) cached(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) restore(ctx context.Context, id string) (*Session, error) {
	snap, err := m.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s, err := m.newSession(id)
	if err != nil {
		return nil, err
	}
	s.history = filterValid(snap.History)
	s.agent.Restore(agent.State{QTable: snap.QTable, Epsilon: snap.Epsilon, Updates: snap.Updates})
	retrained := s.agent.Sync(s.history)
	log.Info().
		Str("session_id", id).
		Int("spins", len(s.history)).
		Int("states", s.agent.StateCount()).
		Bool("retrained", retrained).
		Msg("session restored")
	return s, nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	s, cached := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if cached {
		s.events.Close()
	}

	err := m.store.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		if cached {
			return nil
		}
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	log.Info().Str("session_id", id).Msg("session deleted")
	return nil
}

// Live reports how many sessions are held in memory.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.events.Close()
		delete(m.sessions, id)
	}
}

func filterValid(h []int) []int {
	out := make([]int, 0, len(h))
	for _, n := range h {
		if wheel.Valid(n) {
			out = append(out, n)
		}
	}
	return out
}
