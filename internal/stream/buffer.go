package stream

import (
	"strconv"
	"sync"
	"time"
)

const (
	defaultCapacity   = 200
	subscriberBacklog = 32
)

// Event is one session notification. Seq is monotonic per Buffer and is
// used as the SSE id.
type Event struct {
	Seq       uint64 `json:"seq"`
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	ServerTS  int64  `json:"server_ts"`
	Data      any    `json:"data,omitempty"`
}

func (e Event) ID() string {
	if e.Seq == 0 {
		return ""
	}
	return strconv.FormatUint(e.Seq, 10)
}

// Buffer keeps the most recent events of a session for replay and fans new
// ones out to subscribers. Slow subscribers drop events rather than block
// writers.
type Buffer struct {
	mu      sync.Mutex
	seq     uint64
	cap     int
	recent  []Event
	subs    map[chan Event]struct{}
	closed  bool
	dropped uint64
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Buffer{cap: capacity, subs: map[chan Event]struct{}{}}
}

func (b *Buffer) Publish(typ, sessionID string, data any) Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return Event{}
	}
	b.seq++
	ev := Event{
		Seq:       b.seq,
		Type:      typ,
		SessionID: sessionID,
		ServerTS:  time.Now().UnixMilli(),
		Data:      data,
	}
	b.recent = append(b.recent, ev)
	if over := len(b.recent) - b.cap; over > 0 {
		b.recent = append(b.recent[:0:0], b.recent[over:]...)
	}
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.dropped++
		}
	}
	return ev
}

// Since returns buffered events newer than lastID. An empty or malformed
// id replays everything still buffered.
func (b *Buffer) Since(lastID string) []Event {
	var after uint64
	if lastID != "" {
		if v, err := strconv.ParseUint(lastID, 10, 64); err == nil {
			after = v
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, 0, len(b.recent))
	for _, ev := range b.recent {
		if ev.Seq > after {
			out = append(out, ev)
		}
	}
	return out
}

// Subscribe registers a listener. The returned cancel func is idempotent;
// the channel is closed by cancel or by Close.
func (b *Buffer) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBacklog)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[ch]; ok {
				delete(b.subs, ch)
				close(ch)
			}
		})
	}
}

func (b *Buffer) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Buffer) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
}
