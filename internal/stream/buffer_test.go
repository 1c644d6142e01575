package stream

import (
	"bytes"
	"strings"
	"testing"
)

func TestBufferOrderAndReplay(t *testing.T) {
	buf := NewBuffer(10)
	buf.Publish("spin", "s1", map[string]any{"n": 1})
	buf.Publish("spin", "s1", map[string]any{"n": 2})
	ev3 := buf.Publish("undo", "s1", nil)

	if ev3.ID() != "3" {
		t.Fatalf("third event id = %s, want 3", ev3.ID())
	}
	replay := buf.Since("1")
	if len(replay) != 2 || replay[0].Seq != 2 || replay[1].Type != "undo" {
		t.Fatalf("unexpected replay: %+v", replay)
	}
	if all := buf.Since("garbage"); len(all) != 3 {
		t.Fatalf("malformed id replayed %d events, want 3", len(all))
	}
}

func TestBufferKeepsMostRecent(t *testing.T) {
	buf := NewBuffer(2)
	for i := 0; i < 5; i++ {
		buf.Publish("spin", "s1", i)
	}
	got := buf.Since("")
	if len(got) != 2 || got[0].Seq != 4 || got[1].Seq != 5 {
		t.Fatalf("unexpected retained events: %+v", got)
	}
}

func TestBufferSubscribeAndClose(t *testing.T) {
	buf := NewBuffer(4)
	ch, cancel := buf.Subscribe()
	if buf.Subscribers() != 1 {
		t.Fatalf("subscribers = %d, want 1", buf.Subscribers())
	}
	buf.Publish("spin", "s1", 17)
	ev := <-ch
	if ev.Data != 17 {
		t.Fatalf("received %+v", ev)
	}
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after cancel")
	}

	ch2, _ := buf.Subscribe()
	buf.Close()
	if _, ok := <-ch2; ok {
		t.Fatalf("expected channel closed after Close")
	}
	if ev := buf.Publish("spin", "s1", 1); ev.Seq != 0 {
		t.Fatalf("publish after close returned %+v", ev)
	}
	ch3, _ := buf.Subscribe()
	if _, ok := <-ch3; ok {
		t.Fatalf("subscribe after close should yield a closed channel")
	}
}

func TestBufferDropsForSlowSubscribers(t *testing.T) {
	buf := NewBuffer(100)
	_, cancel := buf.Subscribe()
	defer cancel()
	for i := 0; i < subscriberBacklog+5; i++ {
		buf.Publish("spin", "s1", i)
	}
	if buf.Dropped() != 5 {
		t.Fatalf("dropped = %d, want 5", buf.Dropped())
	}
}

func TestWriteSSE(t *testing.T) {
	var out bytes.Buffer
	ev := Event{Seq: 7, Type: "spin", SessionID: "s1", ServerTS: 1}
	if err := WriteSSE(&out, ev); err != nil {
		t.Fatalf("WriteSSE: %v", err)
	}
	s := out.String()
	if !strings.HasPrefix(s, "id: 7\nevent: spin\ndata: {") || !strings.HasSuffix(s, "}\n\n") {
		t.Fatalf("unexpected frame: %q", s)
	}

	out.Reset()
	if err := WriteSSE(&out, Event{Type: "ping"}); err != nil {
		t.Fatalf("WriteSSE ping: %v", err)
	}
	if strings.Contains(out.String(), "id:") {
		t.Fatalf("ping frame should carry no id: %q", out.String())
	}
}
