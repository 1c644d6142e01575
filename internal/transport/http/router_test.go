package httptransport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appsession "roulette-oracle/internal/app/session"
	"roulette-oracle/internal/config"
	"roulette-oracle/internal/store"
)

func newTestRouter(t *testing.T) (*appsession.Manager, http.Handler) {
	t.Helper()
	st := store.NewMemory()
	opts := appsession.DefaultOptions()
	opts.Seed = 11
	mgr, err := appsession.NewManager(st, opts)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	t.Cleanup(mgr.Close)
	return mgr, NewRouter(mgr, st, config.ServerConfig{CORSOrigins: []string{"*"}})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

func createSession(t *testing.T, h http.Handler, spins []int) string {
	t.Helper()
	var body any
	if spins != nil {
		body = map[string]any{"spins": spins}
	}
	w := do(t, h, http.MethodPost, "/api/sessions", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", w.Code, w.Body.String())
	}
	id, _ := decode(t, w)["session_id"].(string)
	if id == "" {
		t.Fatal("session_id should not be empty")
	}
	return id
}

func TestSessionLifecycle(t *testing.T) {
	_, h := newTestRouter(t)
	id := createSession(t, h, nil)
	base := "/api/sessions/" + id

	w := do(t, h, http.MethodGet, base+"/predictions", nil)
	if w.Code != http.StatusOK || decode(t, w)["ready"] != false {
		t.Fatalf("expected not-ready predictions, status=%d body=%s", w.Code, w.Body.String())
	}

	for _, n := range []int{0, 32, 15, 19, 4, 21, 2, 25} {
		w := do(t, h, http.MethodPost, base+"/spins", map[string]any{"number": n})
		if w.Code != http.StatusOK {
			t.Fatalf("append %d status=%d body=%s", n, w.Code, w.Body.String())
		}
	}

	w = do(t, h, http.MethodGet, base+"/predictions", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("predictions status=%d", w.Code)
	}
	consensus, _ := decode(t, w)["consensus"].(map[string]any)
	if preds, _ := consensus["predictions"].([]any); len(preds) < 12 || len(preds) > 18 {
		t.Fatalf("unexpected predictions: %v", consensus["predictions"])
	}

	w = do(t, h, http.MethodGet, base+"/strategies", nil)
	if results, _ := decode(t, w)["results"].([]any); len(results) != 12 {
		t.Fatalf("expected 12 strategy outcomes, got %s", w.Body.String())
	}

	w = do(t, h, http.MethodGet, base+"/categories", nil)
	if items, _ := decode(t, w)["items"].([]any); len(items) == 0 {
		t.Fatalf("expected categories, got %s", w.Body.String())
	}

	w = do(t, h, http.MethodGet, base+"/agent", nil)
	if actions, _ := decode(t, w)["actions"].([]any); len(actions) != appsession.TopActions {
		t.Fatalf("expected ranked actions, got %s", w.Body.String())
	}

	w = do(t, h, http.MethodGet, base+"/stats", nil)
	if decode(t, w)["total"] != float64(8) {
		t.Fatalf("unexpected stats: %s", w.Body.String())
	}

	w = do(t, h, http.MethodGet, base+"/spins?limit=3&offset=2", nil)
	page := decode(t, w)
	if items, _ := page["items"].([]any); len(items) != 3 || items[0] != float64(15) || page["total"] != float64(8) {
		t.Fatalf("unexpected page: %v", page)
	}

	w = do(t, h, http.MethodGet, base+"/export.csv", nil)
	if !strings.HasPrefix(w.Body.String(), "Spin,Number,Color,OddEven,Range,Dozen,Column\n") {
		t.Fatalf("unexpected csv: %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}

	w = do(t, h, http.MethodDelete, base+"/spins/last", nil)
	change, _ := decode(t, w)["change"].(map[string]any)
	if w.Code != http.StatusOK || change["number"] != float64(25) {
		t.Fatalf("undo status=%d body=%s", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodDelete, base+"/spins/0", nil)
	change, _ = decode(t, w)["change"].(map[string]any)
	if change["number"] != float64(0) || change["length"] != float64(6) {
		t.Fatalf("remove body=%s", w.Body.String())
	}

	w = do(t, h, http.MethodPost, base+"/reset", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reset status=%d", w.Code)
	}
	w = do(t, h, http.MethodGet, base, nil)
	if hist, _ := decode(t, w)["history"].([]any); len(hist) != 0 {
		t.Fatalf("history after reset = %v", hist)
	}

	w = do(t, h, http.MethodDelete, base, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", w.Code)
	}
	w = do(t, h, http.MethodGet, base, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status=%d", w.Code)
	}
}

func TestCreateWithImport(t *testing.T) {
	mgr, h := newTestRouter(t)
	w := do(t, h, http.MethodPost, "/api/sessions", map[string]any{"spins": []int{1, 2, 3, 99, 4, 5}})
	body := decode(t, w)
	if w.Code != http.StatusCreated || body["imported"] != float64(5) || body["persisted"] != true {
		t.Fatalf("create status=%d body=%v", w.Code, body)
	}
	s, err := mgr.Get(context.Background(), body["session_id"].(string))
	if err != nil || s.Len() != 5 {
		t.Fatalf("imported session: %v len=%d", err, s.Len())
	}
}

func TestSessionErrors(t *testing.T) {
	_, h := newTestRouter(t)
	id := createSession(t, h, nil)
	base := "/api/sessions/" + id

	cases := []struct {
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{http.MethodGet, "/api/sessions/" + store.NewID(), nil, http.StatusNotFound, "session_not_found"},
		{http.MethodGet, "/api/sessions/not-a-ulid/agent", nil, http.StatusNotFound, "session_not_found"},
		{http.MethodPost, base + "/spins", map[string]any{"number": 37}, http.StatusUnprocessableEntity, "invalid_outcome"},
		{http.MethodPost, base + "/spins", map[string]any{"value": 3}, http.StatusBadRequest, "invalid_json"},
		{http.MethodDelete, base + "/spins/last", nil, http.StatusConflict, "empty_history"},
		{http.MethodDelete, base + "/spins/4", nil, http.StatusUnprocessableEntity, "index_out_of_range"},
		{http.MethodDelete, base + "/spins/x", nil, http.StatusBadRequest, "invalid_index"},
	}
	for _, tc := range cases {
		w := do(t, h, tc.method, tc.path, tc.body)
		if w.Code != tc.status {
			t.Fatalf("%s %s status=%d want %d body=%s", tc.method, tc.path, w.Code, tc.status, w.Body.String())
		}
		if got := decode(t, w)["error"]; got != tc.code {
			t.Fatalf("%s %s error=%v want %s", tc.method, tc.path, got, tc.code)
		}
	}
}

func TestHealthAndDebugVars(t *testing.T) {
	_, h := newTestRouter(t)
	w := do(t, h, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK || decode(t, w)["store"] != "up" {
		t.Fatalf("healthz status=%d body=%s", w.Code, w.Body.String())
	}
	createSession(t, h, nil)
	w = do(t, h, http.MethodGet, "/api/debug/vars", nil)
	if _, ok := decode(t, w)["session_create_total"]; !ok {
		t.Fatalf("expvar output missing session_create_total")
	}
}

func TestCORSPreflight(t *testing.T) {
	_, h := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
	req.Header.Set("Origin", "http://dashboard.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin = %q, want *", got)
	}
}

func TestEventsSSEReplayAndLive(t *testing.T) {
	mgr, h := newTestRouter(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	id := createSession(t, h, nil)
	s, err := mgr.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := s.Append(context.Background(), 7); err != nil {
		t.Fatalf("append: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/sessions/"+id+"/events", nil)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var id, event string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read stream: %v", err)
			}
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "id: "):
				id = strings.TrimPrefix(line, "id: ")
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case line == "" && event != "":
				return id, event
			}
		}
	}

	if evID, ev := readEvent(); evID != "1" || ev != appsession.EventSpin {
		t.Fatalf("replayed event = %s/%s, want 1/spin", evID, ev)
	}
	if _, err := s.Undo(context.Background()); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if evID, ev := readEvent(); evID != "2" || ev != appsession.EventUndo {
		t.Fatalf("live event = %s/%s, want 2/undo", evID, ev)
	}
}
