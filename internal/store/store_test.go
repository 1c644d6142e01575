package store_test

import (
	"context"
	"errors"
	"testing"

	"roulette-oracle/internal/store"
	"roulette-oracle/internal/testutil"
)

func sampleSnapshot(id string) store.Snapshot {
	return store.Snapshot{
		SessionID: id,
		History:   []int{0, 17, 32, 5, 36, 12},
		QTable: map[string]map[string]float64{
			"rbr|123|LO1": {"red": 0.15, "d2": -0.0225},
			"bbb|222|HE2": {"hot12": 0.3},
		},
		Epsilon: 0.8733,
		Updates: 2,
	}
}

func checkRoundTrip(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()
	id := store.NewID()

	if _, err := st.Load(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Load(unknown) error = %v, want ErrNotFound", err)
	}

	want := sampleSnapshot(id)
	if err := st.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Load(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.History) != len(want.History) {
		t.Fatalf("history = %v, want %v", got.History, want.History)
	}
	for i := range want.History {
		if got.History[i] != want.History[i] {
			t.Fatalf("history = %v, want %v", got.History, want.History)
		}
	}
	if got.Epsilon != want.Epsilon || got.Updates != want.Updates {
		t.Fatalf("agent state = (%v, %d), want (%v, %d)", got.Epsilon, got.Updates, want.Epsilon, want.Updates)
	}
	if got.QTable["rbr|123|LO1"]["d2"] != -0.0225 || got.QTable["bbb|222|HE2"]["hot12"] != 0.3 {
		t.Fatalf("q table = %v", got.QTable)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatalf("expected updated_at to be stamped")
	}

	// overwrite replaces the q table rather than merging it
	want.History = append(want.History, 7)
	want.QTable = map[string]map[string]float64{"rrr|111|LO1": {"black": 0.5}}
	want.Updates = 3
	if err := st.Save(ctx, want); err != nil {
		t.Fatalf("save again: %v", err)
	}
	got, err = st.Load(ctx, id)
	if err != nil {
		t.Fatalf("load again: %v", err)
	}
	if len(got.History) != 7 || got.Updates != 3 {
		t.Fatalf("unexpected snapshot after overwrite: %+v", got)
	}
	if len(got.QTable) != 1 || got.QTable["rrr|111|LO1"]["black"] != 0.5 {
		t.Fatalf("q table after overwrite = %v", got.QTable)
	}

	if err := st.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.Delete(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete error = %v, want ErrNotFound", err)
	}
	if _, err := st.Load(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("load after delete error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	checkRoundTrip(t, store.NewMemory())
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	snap := sampleSnapshot("s1")
	if err := st.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap.History[0] = 36
	snap.QTable["rbr|123|LO1"]["red"] = 9

	got, err := st.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.History[0] != 0 || got.QTable["rbr|123|LO1"]["red"] != 0.15 {
		t.Fatalf("stored snapshot aliased caller memory: %+v", got)
	}
}

func TestPGStoreRoundTrip(t *testing.T) {
	st := testutil.OpenTestStore(t)
	checkRoundTrip(t, st)
}

func TestPGStoreLargeQTable(t *testing.T) {
	st := testutil.OpenTestStore(t)
	ctx := context.Background()

	snap := store.Snapshot{SessionID: store.NewID(), History: []int{1, 2, 3}, Epsilon: 0.05, QTable: map[string]map[string]float64{}}
	for i := 0; i < 300; i++ {
		row := map[string]float64{}
		for _, a := range []string{"red", "black", "even", "odd", "low"} {
			row[a] = float64(i) / 1000
		}
		snap.QTable[store.NewID()] = row
	}
	if err := st.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Load(ctx, snap.SessionID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.QTable) != 300 {
		t.Fatalf("states = %d, want 300", len(got.QTable))
	}
}

func TestPGStorePartialSave(t *testing.T) {
	st := testutil.OpenTestStore(t)
	ctx := context.Background()
	id := store.NewID()
	snap := store.Snapshot{
		SessionID: id,
		History:   []int{1, 2, 3, 4, 5},
		Epsilon:   0.8,
		Updates:   1,
		QTable: map[string]map[string]float64{
			"rrr|111|LO1": {"red": 0.15},
			"bbb|222|HE2": {"black": -0.015},
			"rbr|333|LO3": {"even": 0.3},
		},
	}
	if err := st.Save(ctx, snap); err != nil {
		t.Fatalf("full save: %v", err)
	}

	// One state updated, one evicted, one untouched. The stale value left
	// in the untouched row must survive because the save skips it.
	snap.History = append(snap.History, 6)
	snap.Updates = 2
	snap.QTable = map[string]map[string]float64{
		"rrr|111|LO1": {"red": 0.3, "odd": -0.015},
		"rbr|333|LO3": {"even": 99},
	}
	snap.Changed = []string{"rrr|111|LO1", "bbb|222|HE2"}
	snap.Partial = true
	if err := st.Save(ctx, snap); err != nil {
		t.Fatalf("partial save: %v", err)
	}

	got, err := st.Load(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.History) != 6 || got.Updates != 2 {
		t.Fatalf("session row not updated: %+v", got)
	}
	if _, ok := got.QTable["bbb|222|HE2"]; ok {
		t.Fatalf("evicted state still stored")
	}
	if r := got.QTable["rrr|111|LO1"]; r["red"] != 0.3 || r["odd"] != -0.015 {
		t.Fatalf("changed state = %v", r)
	}
	if r := got.QTable["rbr|333|LO3"]; r["even"] != 0.3 {
		t.Fatalf("unchanged state was rewritten: %v", r)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	client := testutil.OpenTestRedis(t)
	checkRoundTrip(t, store.NewRedis(client, 0))
}

func TestSpinPublisherAppends(t *testing.T) {
	client := testutil.OpenTestRedis(t)
	ctx := context.Background()
	stream := "test.spins." + store.NewID()
	t.Cleanup(func() { client.Del(ctx, stream) })

	pub := store.NewSpinPublisher(client, stream)
	if err := pub.Publish(ctx, store.SpinEvent{SessionID: "s1", Kind: "append", Number: 17, Length: 1}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	msgs, err := client.XRange(ctx, stream, "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Values["number"] != "17" || msgs[0].Values["kind"] != "append" {
		t.Fatalf("unexpected stream contents: %+v", msgs)
	}
}

func TestNewIDIsValid(t *testing.T) {
	a, b := store.NewID(), store.NewID()
	if a == b || !(a < b) {
		t.Fatalf("ids not monotonic: %s %s", a, b)
	}
	if !store.ValidID(a) {
		t.Fatalf("ValidID(%s) = false", a)
	}
	if store.ValidID("not-an-id") {
		t.Fatalf("ValidID accepted garbage")
	}
}
