package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appsession "roulette-oracle/internal/app/session"
	"roulette-oracle/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*appsession.Manager, *httptest.Server) {
	t.Helper()
	mgr, err := appsession.NewManager(store.NewMemory(), appsession.DefaultOptions())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	r := chi.NewRouter()
	r.Get("/ws/sessions/{session_id}", NewServer(mgr).HandleWS)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		mgr.Close()
	})
	return mgr, srv
}

func dial(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/sessions/" + id
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type frame struct {
	Type      string             `json:"type"`
	RequestID string             `json:"request_id"`
	Ok        bool               `json:"ok"`
	Error     string             `json:"error"`
	Change    *appsession.Change `json:"change"`
	Reason    string             `json:"reason"`
	Overview  struct {
		History []int `json:"history"`
	} `json:"overview"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		t.Fatalf("decode frame %s: %v", raw, err)
	}
	return f
}

// readUntil collects frames until one of each wanted type has arrived.
func readUntil(t *testing.T, conn *websocket.Conn, types ...string) map[string]frame {
	t.Helper()
	got := map[string]frame{}
	for i := 0; i < 10 && len(got) < len(types); i++ {
		f := readFrame(t, conn)
		for _, want := range types {
			if f.Type == want {
				got[want] = f
			}
		}
	}
	if len(got) < len(types) {
		t.Fatalf("wanted frames %v, got %v", types, got)
	}
	return got
}

func TestHandleWSUnknownSession(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/ws/sessions/" + store.NewID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSpinOverSocket(t *testing.T) {
	mgr, srv := newTestServer(t)
	sess, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	conn := dial(t, srv, sess.ID)
	if hello := readFrame(t, conn); hello.Type != "hello" {
		t.Fatalf("first frame = %q, want hello", hello.Type)
	}

	if err := conn.WriteJSON(map[string]any{"type": "spin", "request_id": "r1", "number": 17}); err != nil {
		t.Fatalf("write: %v", err)
	}
	frames := readUntil(t, conn, "result", "update")
	res := frames["result"]
	if !res.Ok || res.RequestID != "r1" || res.Change == nil || res.Change.Number != 17 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if h := frames["update"].Overview.History; len(h) != 1 || h[0] != 17 {
		t.Fatalf("update history = %v, want [17]", h)
	}
	if sess.Len() != 1 {
		t.Fatalf("session length = %d, want 1", sess.Len())
	}
}

func TestSocketRejectsBadCommands(t *testing.T) {
	mgr, srv := newTestServer(t)
	sess, _ := mgr.Create(context.Background())
	conn := dial(t, srv, sess.ID)
	readFrame(t, conn)

	cases := []struct {
		msg  map[string]any
		code string
	}{
		{map[string]any{"type": "spin", "number": 37}, "invalid_outcome"},
		{map[string]any{"type": "spin"}, "invalid_outcome"},
		{map[string]any{"type": "undo"}, "empty_history"},
		{map[string]any{"type": "remove", "index": 0}, "index_out_of_range"},
		{map[string]any{"type": "fold"}, "unknown_type"},
		{map[string]any{"type": "reset", "request_id": strings.Repeat("a", 65)}, "invalid_request_id"},
	}
	for _, tc := range cases {
		if err := conn.WriteJSON(tc.msg); err != nil {
			t.Fatalf("write: %v", err)
		}
		f := readFrame(t, conn)
		if f.Type != "result" || f.Ok || f.Error != tc.code {
			t.Fatalf("%v: got %+v, want error %s", tc.msg, f, tc.code)
		}
	}
}

func TestUpdatesFromOtherWriters(t *testing.T) {
	mgr, srv := newTestServer(t)
	sess, _ := mgr.Create(context.Background())
	conn := dial(t, srv, sess.ID)
	readFrame(t, conn)

	if _, err := sess.Append(context.Background(), 5); err != nil {
		t.Fatalf("append: %v", err)
	}
	f := readFrame(t, conn)
	if f.Type != "update" || len(f.Overview.History) != 1 {
		t.Fatalf("unexpected frame: %+v", f)
	}

	if err := mgr.Delete(context.Background(), sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	f = readFrame(t, conn)
	if f.Type != "closed" || f.Reason != "session_closed" {
		t.Fatalf("expected closed frame, got %+v", f)
	}
}
