// Package memory implements store.Store in process memory.
//
// Writes are serialized by a mutex and every committed change is broadcast
// to all subscribers as a full snapshot. An optional Persist hook runs before
// a change commits, and Replace installs state that was committed elsewhere.
package memory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"sharedtodo/internal/store"
)

// Options configures a Store.
type Options struct {
	// Persist, if set, receives the next state before it commits.
	// A Persist error aborts the write.
	Persist func(ctx context.Context, snap store.Snapshot) error

	// NewKey allocates task keys. Defaults to time-ordered UUIDs.
	NewKey func() string

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Store is an in-memory realtime task store.
type Store struct {
	mu      sync.Mutex
	entries store.Snapshot
	subs    map[uint64]*subscriber
	nextSub uint64

	persist func(ctx context.Context, snap store.Snapshot) error
	newKey  func() string
	log     *slog.Logger
}

// New creates a store seeded with the given entries.
// Seed entries with an empty key get a freshly allocated one.
func New(opts Options, seed ...store.Entry) *Store {
	s := &Store{
		subs:    make(map[uint64]*subscriber),
		persist: opts.Persist,
		newKey:  opts.NewKey,
		log:     opts.Logger,
	}
	if s.newKey == nil {
		s.newKey = NewKey
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.entries = make(store.Snapshot, 0, len(seed))
	for _, e := range seed {
		if e.Key == "" {
			e.Key = s.newKey()
		}
		s.entries = append(s.entries, store.Entry{Key: e.Key, Task: e.Task.Clone()})
	}
	return s
}

// NewKey returns a time-ordered UUID, so lexical key order follows creation order.
func NewKey() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() store.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Clone()
}

// Push implements store.Store.
func (s *Store) Push(ctx context.Context, task store.Task) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.newKey()
	next := append(s.entries.Clone(), store.Entry{Key: key, Task: task.Clone()})
	if err := s.commit(ctx, next); err != nil {
		return "", err
	}
	s.log.Debug("task pushed", "key", key)
	return key, nil
}

// Update implements store.Store.
func (s *Store) Update(ctx context.Context, path store.Path, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := path.Key()
	next := s.entries.Clone()
	i := indexOf(next, key)
	if i < 0 {
		return fmt.Errorf("update %s: %w", path, store.ErrNotFound)
	}
	if err := store.Apply(&next[i].Task, path[1:], value); err != nil {
		return err
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Debug("task updated", "path", path.String())
	return nil
}

// Remove implements store.Store.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.entries, key)
	if i < 0 {
		return fmt.Errorf("remove %s: %w", key, store.ErrNotFound)
	}
	next := make(store.Snapshot, 0, len(s.entries)-1)
	next = append(next, s.entries[:i].Clone()...)
	next = append(next, s.entries[i+1:].Clone()...)
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Debug("task removed", "key", key)
	return nil
}

// SubscribeToAll implements store.Store.
func (s *Store) SubscribeToAll(ctx context.Context, fn func(store.Snapshot)) (func(), error) {
	if fn == nil {
		return nil, fmt.Errorf("subscribe: nil callback")
	}
	ctx, cancel := context.WithCancel(ctx)
	sub := &subscriber{fn: fn, notify: make(chan struct{}, 1)}

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	sub.offer(s.entries.Clone())
	s.mu.Unlock()

	go func() {
		sub.run(ctx)
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}()

	return cancel, nil
}

// Replace makes snap the current state and broadcasts it. Persist is not called:
// the state was written elsewhere.
func (s *Store) Replace(snap store.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = snap.Clone()
	for _, sub := range s.subs {
		sub.offer(s.entries.Clone())
	}
}

// commit persists next, makes it current and broadcasts it. Caller holds s.mu.
func (s *Store) commit(ctx context.Context, next store.Snapshot) error {
	if s.persist != nil {
		if err := s.persist(ctx, next.Clone()); err != nil {
			return fmt.Errorf("persist: %w", err)
		}
	}
	s.entries = next
	for _, sub := range s.subs {
		sub.offer(next.Clone())
	}
	return nil
}

func indexOf(entries store.Snapshot, key string) int {
	for i, e := range entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// subscriber delivers snapshots on its own goroutine, keeping only the latest.
type subscriber struct {
	fn     func(store.Snapshot)
	mu     sync.Mutex
	latest store.Snapshot
	notify chan struct{}
}

func (sub *subscriber) offer(snap store.Snapshot) {
	sub.mu.Lock()
	sub.latest = snap
	sub.mu.Unlock()
	select {
	case sub.notify <- struct{}{}:
	default:
	}
}

func (sub *subscriber) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.notify:
			sub.mu.Lock()
			snap := sub.latest
			sub.mu.Unlock()
			sub.fn(snap)
		}
	}
}
