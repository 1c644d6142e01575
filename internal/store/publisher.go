package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// SpinEvent describes one change to a session's history.
type SpinEvent struct {
	SessionID string
	Kind      string
	Number    int
	Length    int
	At        time.Time
}

// SpinPublisher appends spin events to a redis stream for downstream
// consumers.
type SpinPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewSpinPublisher(client *redis.Client, stream string) *SpinPublisher {
	return &SpinPublisher{client: client, stream: stream, maxLen: 100000}
}

func (p *SpinPublisher) Publish(ctx context.Context, ev SpinEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"session_id": ev.SessionID,
			"kind":       ev.Kind,
			"number":     strconv.Itoa(ev.Number),
			"length":     strconv.Itoa(ev.Length),
			"at":         ev.At.Format(time.RFC3339Nano),
		},
	}).Err()
}
