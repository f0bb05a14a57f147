package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sharedtodo/internal/store"
	"sharedtodo/internal/store/memory"
)

func TestParsePath(t *testing.T) {
	got := store.ParsePath("/k1//pending/Alice/")
	want := store.Path{"k1", "pending", "Alice"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if got.Key() != "k1" {
		t.Errorf("expected key k1, got %q", got.Key())
	}
	if got.String() != "k1/pending/Alice" {
		t.Errorf("unexpected string %q", got.String())
	}
}

func TestApply_PendingEntry(t *testing.T) {
	task := store.NewTask("t", "", []string{"Alice", "Bob"})

	if err := store.Apply(&task, store.Path{"pending", "Alice"}, nil); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := store.Apply(&task, store.Path{"pending", "Cara"}, true); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if diff := cmp.Diff([]string{"Bob", "Cara"}, task.PendingNames()); diff != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_ReplaceSet(t *testing.T) {
	task := store.NewTask("t", "", []string{"Alice"})
	if err := store.Apply(&task, store.Path{"pending"}, []string{"Dan", "Eva"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if diff := cmp.Diff([]string{"Dan", "Eva"}, task.PendingNames()); diff != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_Rejects(t *testing.T) {
	task := store.NewTask("t", "", nil)

	if err := store.Apply(&task, store.Path{"text"}, "x"); !errors.Is(err, store.ErrBadPath) {
		t.Errorf("expected ErrBadPath, got %v", err)
	}
	if err := store.Apply(&task, store.Path{"pending", "Alice"}, "yes"); !errors.Is(err, store.ErrBadValue) {
		t.Errorf("expected ErrBadValue, got %v", err)
	}
	if err := store.Apply(&task, store.Path{"pending", "Alice", "x"}, nil); !errors.Is(err, store.ErrBadPath) {
		t.Errorf("expected ErrBadPath, got %v", err)
	}
}

func TestClone_IsDeep(t *testing.T) {
	snap := store.Snapshot{{Key: "k", Task: store.NewTask("t", "", []string{"Alice"})}}
	c := snap.Clone()
	delete(c[0].Task.Pending, "Alice")

	if !snap[0].Task.IsPending("Alice") {
		t.Error("clone shares pending map with original")
	}
	if got := store.Snapshot(nil).Clone(); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil clone, got %#v", got)
	}
}

func TestFetch_ReturnsCurrentState(t *testing.T) {
	s := memory.New(memory.Options{}, store.Entry{Key: "a", Task: store.NewTask("one", "", nil)})

	snap, err := store.Fetch(context.Background(), s)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, snap.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestFetch_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Fetch(ctx, blockingStore{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// blockingStore never delivers a snapshot.
type blockingStore struct{}

func (blockingStore) Push(context.Context, store.Task) (string, error)   { return "", nil }
func (blockingStore) Update(context.Context, store.Path, any) error      { return nil }
func (blockingStore) Remove(context.Context, string) error               { return nil }
func (blockingStore) SubscribeToAll(context.Context, func(store.Snapshot)) (func(), error) {
	return func() {}, nil
}
