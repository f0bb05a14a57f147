package localstore_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/uptrace/bun"

	"sharedtodo/internal/store"
	"sharedtodo/internal/store/localstore"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := localstore.OpenDB(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestOpen_EmptyDatabase(t *testing.T) {
	ctx := context.Background()
	s, err := localstore.Open(ctx, newTestDB(t), localstore.Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if n := len(s.Snapshot()); n != 0 {
		t.Errorf("expected no tasks, got %d", n)
	}
}

func TestOpen_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	s, err := localstore.Open(ctx, db, localstore.Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key, err := s.Push(ctx, store.NewTask("Buy milk", "2024-01-01", []string{"Alice", "Bob"}))
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := s.Update(ctx, store.PendingPath(key, "Alice"), nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.Push(ctx, store.NewTask("Call mum", "", []string{"Cara"})); err != nil {
		t.Fatalf("push: %v", err)
	}

	reopened, err := localstore.Open(ctx, db, localstore.Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	snap := reopened.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(snap))
	}
	if snap[0].Task.Text != "Buy milk" || snap[0].Task.Deadline != "2024-01-01" {
		t.Errorf("unexpected first task: %+v", snap[0].Task)
	}
	if diff := cmp.Diff([]string{"Bob"}, snap[0].Task.PendingNames()); diff != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", diff)
	}
	if snap[1].Task.Text != "Call mum" {
		t.Errorf("unexpected second task: %+v", snap[1].Task)
	}
}

func TestOpen_SeparateKeys(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	a, _ := localstore.Open(ctx, db, localstore.Options{Key: "a"})
	a.Push(ctx, store.NewTask("only in a", "", nil))

	b, err := localstore.Open(ctx, db, localstore.Options{Key: "b"})
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	if n := len(b.Snapshot()); n != 0 {
		t.Errorf("expected key b to be empty, got %d tasks", n)
	}
}

func TestDecode_MalformedAndEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "null", "[]"} {
		entries, err := localstore.Decode(raw)
		if err != nil {
			t.Errorf("Decode(%q): unexpected error %v", raw, err)
		}
		if len(entries) != 0 {
			t.Errorf("Decode(%q): expected no entries, got %d", raw, len(entries))
		}
	}
	if _, err := localstore.Decode("{not json"); err == nil {
		t.Error("expected error for malformed data")
	}
}

func TestEncode_ArrayShape(t *testing.T) {
	snap := store.Snapshot{
		{Key: "k1", Task: store.NewTask("t", "2024-01-01", []string{"Bob", "Alice"})},
	}
	data, err := localstore.Encode(snap)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `[{"key":"k1","text":"t","pending":["Alice","Bob"],"deadline":"2024-01-01"}]`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestOpen_MalformedStoredValueLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	if _, err := localstore.Open(ctx, db, localstore.Options{}); err != nil {
		t.Fatalf("open: %v", err)
	}
	_, err := db.ExecContext(ctx, "INSERT INTO local_storage (key, value) VALUES (?, ?)",
		store.DefaultNamespace, "{broken")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	s, err := localstore.Open(ctx, db, localstore.Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if n := len(s.Snapshot()); n != 0 {
		t.Errorf("expected empty list, got %d tasks", n)
	}

	// The next write replaces the malformed value.
	if _, err := s.Push(ctx, store.NewTask("fresh", "", nil)); err != nil {
		t.Fatalf("push: %v", err)
	}
	again, _ := localstore.Open(ctx, db, localstore.Options{})
	if got := len(again.Snapshot()); got != 1 {
		t.Errorf("expected 1 task after rewrite, got %d", got)
	}
}

func ExampleEncode() {
	data, _ := localstore.Encode(store.Snapshot{
		{Key: "k", Task: store.NewTask("Buy milk", "", []string{"Alice"})},
	})
	fmt.Println(string(data))
	// Output: [{"key":"k","text":"Buy milk","pending":["Alice"],"deadline":""}]
}

func TestDecode_KeysAreStable(t *testing.T) {
	raw := `[{"text":"a","pending":[],"deadline":""},{"key":"kept","text":"b","pending":[],"deadline":""}]`

	first, err := localstore.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	second, _ := localstore.Decode(raw)

	if first[0].Key == "" || first[0].Key != second[0].Key {
		t.Errorf("expected the same derived key on every decode, got %q and %q", first[0].Key, second[0].Key)
	}
	if first[1].Key != "kept" {
		t.Errorf("expected stored key %q, got %q", "kept", first[1].Key)
	}
}

func TestShared_WritersDoNotOverwriteEachOther(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	cli, err := localstore.Open(ctx, db, localstore.Options{})
	if err != nil {
		t.Fatalf("open cli: %v", err)
	}
	server, err := localstore.Open(ctx, db, localstore.Options{})
	if err != nil {
		t.Fatalf("open server: %v", err)
	}

	if _, err := cli.Push(ctx, store.NewTask("from cli", "", []string{"Alice"})); err != nil {
		t.Fatalf("cli push: %v", err)
	}
	webKey, err := server.Push(ctx, store.NewTask("from web", "", []string{"Alice", "Bob"}))
	if err != nil {
		t.Fatalf("server push: %v", err)
	}
	// A key handed out by one opener is valid for the other.
	if err := cli.Update(ctx, store.PendingPath(webKey, "Bob"), nil); err != nil {
		t.Fatalf("cli update: %v", err)
	}

	reopened, err := localstore.Open(ctx, db, localstore.Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	snap := reopened.Snapshot()
	var texts []string
	for _, e := range snap {
		texts = append(texts, e.Task.Text)
	}
	if diff := cmp.Diff([]string{"from cli", "from web"}, texts); diff != "" {
		t.Fatalf("tasks mismatch (-want +got):\n%s", diff)
	}
	task, _ := snap.Get(webKey)
	if diff := cmp.Diff([]string{"Alice"}, task.PendingNames()); diff != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", diff)
	}
}

func TestShared_RemoveSeesOtherWriter(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	a, _ := localstore.Open(ctx, db, localstore.Options{})
	b, _ := localstore.Open(ctx, db, localstore.Options{})

	key, err := a.Push(ctx, store.NewTask("t", "", nil))
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := b.Remove(ctx, key); err != nil {
		t.Fatalf("remove through second opener: %v", err)
	}
	if err := a.Remove(ctx, key); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestShared_SubscriberSeesOtherWriter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	db := newTestDB(t)

	server, _ := localstore.Open(ctx, db, localstore.Options{PollInterval: 10 * time.Millisecond})
	cli, _ := localstore.Open(ctx, db, localstore.Options{})

	ch := make(chan store.Snapshot, 16)
	unsubscribe, err := server.SubscribeToAll(ctx, func(snap store.Snapshot) { ch <- snap })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()

	if _, err := cli.Push(ctx, store.NewTask("added from the command line", "", nil)); err != nil {
		t.Fatalf("push: %v", err)
	}

	timeout := time.After(2 * time.Second)
	for {
		select {
		case snap := <-ch:
			if len(snap) == 1 && snap[0].Task.Text == "added from the command line" {
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for the other writer's task")
		}
	}
}

func TestFetch_ReadsLatestFromDisk(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	a, _ := localstore.Open(ctx, db, localstore.Options{})
	b, _ := localstore.Open(ctx, db, localstore.Options{})
	if _, err := b.Push(ctx, store.NewTask("t", "", nil)); err != nil {
		t.Fatalf("push: %v", err)
	}

	snap, err := store.Fetch(ctx, a)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(snap) != 1 {
		t.Errorf("expected 1 task, got %d", len(snap))
	}
}
