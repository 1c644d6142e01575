package session

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"roulette-oracle/internal/agent"
	"roulette-oracle/internal/analysis"
	"roulette-oracle/internal/category"
	"roulette-oracle/internal/consensus"
	"roulette-oracle/internal/export"
	"roulette-oracle/internal/store"
	"roulette-oracle/internal/stream"
	"roulette-oracle/internal/wheel"

	"github.com/rs/zerolog/log"
)

// Session owns one spin history and the agent trained on it. Writers take
// the write lock; every read works on a consistent snapshot under the read
// lock and never touches the Q-table for writing.
type Session struct {
	ID string

	mu      sync.RWMutex
	history []int
	agent   *agent.Agent

	agg    *consensus.Aggregator
	store  store.Store
	pub    SpinPublisher
	events *stream.Buffer
}

func (s *Session) Events() *stream.Buffer {
	return s.events
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

func (s *Session) History() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.history...)
}

// Append records an outcome. Values outside 0..36 are rejected with
// ErrInvalidOutcome and leave the session untouched. The in-memory state
// stays authoritative when the store fails; the next write saves it again.
func (s *Session) Append(ctx context.Context, n int) (Change, error) {
	if !wheel.Valid(n) {
		return Change{}, ErrInvalidOutcome
	}
	s.mu.Lock()
	before := s.history
	s.agent.Sync(before)
	act, _ := s.agent.Observe(before, n)
	s.history = append(before, n)
	ch := Change{Kind: EventSpin, Number: n, Color: wheel.ColorOf(n), Index: len(s.history) - 1, Length: len(s.history), Agent: act}
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.announce(ctx, ch)
	return ch, err
}

// Undo drops the most recent outcome.
func (s *Session) Undo(ctx context.Context) (Change, error) {
	s.mu.Lock()
	if len(s.history) == 0 {
		s.mu.Unlock()
		return Change{}, ErrEmptyHistory
	}
	i := len(s.history) - 1
	n := s.history[i]
	s.history = s.history[:i:i]
	ch := Change{Kind: EventUndo, Number: n, Color: wheel.ColorOf(n), Index: i, Length: len(s.history)}
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.announce(ctx, ch)
	return ch, err
}

// RemoveAt deletes the outcome at index i, counted from the oldest spin.
func (s *Session) RemoveAt(ctx context.Context, i int) (Change, error) {
	s.mu.Lock()
	if i < 0 || i >= len(s.history) {
		s.mu.Unlock()
		return Change{}, ErrIndexOutOfRange
	}
	n := s.history[i]
	next := make([]int, 0, len(s.history)-1)
	next = append(next, s.history[:i]...)
	s.history = append(next, s.history[i+1:]...)
	ch := Change{Kind: EventRemove, Number: n, Color: wheel.ColorOf(n), Index: i, Length: len(s.history)}
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.announce(ctx, ch)
	return ch, err
}

// Reset clears the history and the agent together.
func (s *Session) Reset(ctx context.Context) (Change, error) {
	s.mu.Lock()
	s.history = nil
	s.agent.Reset()
	ch := Change{Kind: EventReset, Index: -1}
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.announce(ctx, ch)
	return ch, err
}

// Import replaces the history with the valid values of h and retrains the
// agent from scratch. It returns how many values were accepted.
func (s *Session) Import(ctx context.Context, h []int) (int, error) {
	accepted := make([]int, 0, len(h))
	for _, n := range h {
		if wheel.Valid(n) {
			accepted = append(accepted, n)
		}
	}
	s.mu.Lock()
	s.history = accepted
	s.agent.Reset()
	s.agent.Train(accepted)
	ch := Change{Kind: EventImport, Index: -1, Length: len(accepted)}
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.announce(ctx, ch)
	return len(accepted), err
}

func (s *Session) persistLocked(ctx context.Context) error {
	st := s.agent.Snapshot()
	changed, full := s.agent.Changes()
	snap := store.Snapshot{
		SessionID: s.ID,
		History:   append([]int(nil), s.history...),
		QTable:    st.QTable,
		Epsilon:   st.Epsilon,
		Updates:   st.Updates,
		UpdatedAt: time.Now().UTC(),
		Changed:   changed,
		Partial:   !full,
	}
	if err := s.store.Save(ctx, snap); err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Int("spins", len(snap.History)).Msg("session save failed")
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	s.agent.Commit()
	return nil
}

func (s *Session) announce(ctx context.Context, ch Change) {
	s.events.Publish(ch.Kind, s.ID, ch)
	if s.pub == nil {
		return
	}
	ev := store.SpinEvent{SessionID: s.ID, Kind: ch.Kind, Number: ch.Number, Length: ch.Length}
	if err := s.pub.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("session_id", s.ID).Str("kind", ch.Kind).Msg("spin event publish failed")
	}
}

// Predict runs the strategy consensus and category scorer.
func (s *Session) Predict() (Prediction, error) {
	h := s.History()
	if len(h) < MinPredictionSpins {
		return Prediction{}, ErrInsufficientData
	}
	return s.predict(h), nil
}

func (s *Session) predict(h []int) Prediction {
	report := s.agg.Run(h)
	return Prediction{Consensus: report, Categories: category.Score(report.Top(), h)}
}

func (s *Session) Agent() (AgentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.history) < MinAgentSpins {
		return AgentView{}, ErrInsufficientData
	}
	return s.agentViewLocked(), nil
}

func (s *Session) agentViewLocked() AgentView {
	state := agent.Encode(s.history)
	ranked := s.agent.Best(state, TopActions)
	v := AgentView{
		State:      state,
		Actions:    ranked,
		StateCount: s.agent.StateCount(),
		AverageQ:   s.agent.AverageQ(),
		Epsilon:    s.agent.Epsilon(),
		Updates:    s.agent.Updates(),
	}
	if len(ranked) > 0 {
		v.Confidence = agent.Confidence(ranked[0].Q)
	}
	recent := wheel.Tail(s.history, agentTrendWindow)
	var red, even, nonZero int
	for _, n := range recent {
		if wheel.IsRed(n) {
			red++
		}
		if n != 0 {
			nonZero++
		}
		if wheel.IsEven(n) {
			even++
		}
	}
	// Zeros are neither even nor odd, so the even rate skips them.
	v.RedPercent = percent(red, len(recent))
	v.EvenPercent = percent(even, nonZero)
	return v
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Floor(float64(part)/float64(whole)*100 + 0.5))
}

func (s *Session) Stats() (analysis.Summary, error) {
	sum, ok := analysis.Summarize(s.History())
	if !ok {
		return analysis.Summary{}, ErrInsufficientData
	}
	return sum, nil
}

func (s *Session) Rows() []export.Row {
	return export.Rows(s.History())
}

func (s *Session) ExportCSV(w io.Writer) error {
	return export.WriteCSV(w, s.History())
}

// Overview gathers every view the history is long enough for.
func (s *Session) Overview() Overview {
	s.mu.RLock()
	h := append([]int(nil), s.history...)
	var av *AgentView
	if len(h) >= MinAgentSpins {
		v := s.agentViewLocked()
		av = &v
	}
	s.mu.RUnlock()

	out := Overview{ID: s.ID, History: h, Agent: av}
	if len(h) > 0 {
		last := h[len(h)-1]
		out.Last = &last
	}
	if len(h) >= MinPredictionSpins {
		p := s.predict(h)
		out.Prediction = &p
	}
	if sum, ok := analysis.Summarize(h); ok {
		out.Stats = &sum
	}
	return out
}
