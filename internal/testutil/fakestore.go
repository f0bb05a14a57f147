// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strconv"
	"sync"

	"sharedtodo/internal/store"
	"sharedtodo/internal/store/memory"
)

// FakeStore is an in-memory store.Store with error injection and call counts.
type FakeStore struct {
	*memory.Store

	mu    sync.Mutex
	calls map[string]int

	// Error injection for testing
	PushErr      error
	UpdateErr    error
	RemoveErr    error
	SubscribeErr error
}

// NewFakeStore creates a FakeStore holding the given tasks in order.
// Keys are "k1", "k2", ... in creation order.
func NewFakeStore(tasks ...store.Task) *FakeStore {
	var n int
	var mu sync.Mutex
	newKey := func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "k" + strconv.Itoa(n)
	}

	seed := make([]store.Entry, len(tasks))
	for i, t := range tasks {
		seed[i] = store.Entry{Task: t}
	}
	return &FakeStore{
		Store: memory.New(memory.Options{NewKey: newKey}, seed...),
		calls: make(map[string]int),
	}
}

// Calls returns how often op ("push", "update", "remove", "subscribe") was called.
func (f *FakeStore) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FakeStore) count(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

// Push implements store.Store.
func (f *FakeStore) Push(ctx context.Context, task store.Task) (string, error) {
	f.count("push")
	if f.PushErr != nil {
		return "", f.PushErr
	}
	return f.Store.Push(ctx, task)
}

// Update implements store.Store.
func (f *FakeStore) Update(ctx context.Context, path store.Path, value any) error {
	f.count("update")
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	return f.Store.Update(ctx, path, value)
}

// Remove implements store.Store.
func (f *FakeStore) Remove(ctx context.Context, key string) error {
	f.count("remove")
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	return f.Store.Remove(ctx, key)
}

// SubscribeToAll implements store.Store.
func (f *FakeStore) SubscribeToAll(ctx context.Context, fn func(store.Snapshot)) (func(), error) {
	f.count("subscribe")
	if f.SubscribeErr != nil {
		return nil, f.SubscribeErr
	}
	return f.Store.SubscribeToAll(ctx, fn)
}
