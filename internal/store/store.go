// Package store defines the backend-agnostic contract of the realtime task store.
// The to-do core never imports a backend directly.
package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBadPath is returned for update paths the store does not understand.
	ErrBadPath = errors.New("unsupported update path")

	// ErrBadValue is returned when an update value does not fit its path.
	ErrBadValue = errors.New("unsupported update value")
)

// Store is the capability the to-do core consumes.
type Store interface {
	// Push allocates a new key and writes the task under it.
	Push(ctx context.Context, task Task) (string, error)

	// Update writes value at path. A nil value deletes the addressed entry.
	// Supported paths are "<key>/pending/<name>" (nil or true) and
	// "<key>/pending" ([]string replacing the set).
	Update(ctx context.Context, path Path, value any) error

	// Remove deletes the task stored under key.
	Remove(ctx context.Context, key string) error

	// SubscribeToAll calls fn with the current snapshot and then with a full
	// snapshot after every change, until cancel is called or ctx is done.
	// Snapshots may be coalesced: fn always sees the latest state, not
	// necessarily every intermediate one.
	SubscribeToAll(ctx context.Context, fn func(Snapshot)) (cancel func(), err error)
}

// Fetch returns the current snapshot by subscribing and waiting for the first delivery.
func Fetch(ctx context.Context, s Store) (Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan Snapshot, 1)
	unsubscribe, err := s.SubscribeToAll(ctx, func(snap Snapshot) {
		select {
		case ch <- snap:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	defer unsubscribe()

	select {
	case snap := <-ch:
		return snap, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Apply performs the update at the given path on task, in place.
// The path must already have its key segment stripped.
func Apply(task *Task, rest Path, value any) error {
	if len(rest) == 0 || rest[0] != "pending" {
		return fmt.Errorf("%w: %s", ErrBadPath, rest)
	}
	if task.Pending == nil {
		task.Pending = make(map[string]bool)
	}

	switch len(rest) {
	case 1:
		switch v := value.(type) {
		case nil:
			task.Pending = make(map[string]bool)
		case []string:
			task.Pending = make(map[string]bool, len(v))
			for _, name := range v {
				task.Pending[name] = true
			}
		default:
			return fmt.Errorf("%w: %T for %s", ErrBadValue, value, rest)
		}
	case 2:
		name := rest[1]
		switch v := value.(type) {
		case nil:
			delete(task.Pending, name)
		case bool:
			if v {
				task.Pending[name] = true
			} else {
				delete(task.Pending, name)
			}
		default:
			return fmt.Errorf("%w: %T for %s", ErrBadValue, value, rest)
		}
	default:
		return fmt.Errorf("%w: %s", ErrBadPath, rest)
	}
	return nil
}
