// Package localstore is the single-user variant of the task store.
//
// Tasks are kept as a JSON array under one key of a SQLite key-value table,
// mirroring how the page keeps them in browser local storage when no shared
// backend is wired in. The database row is the source of truth: every write
// re-reads it inside a transaction, and subscribers re-read it on a timer, so
// a CLI command and a running server can share one database file.
package localstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"sharedtodo/internal/store"
	"sharedtodo/internal/store/memory"
)

// kvEntry is one row of the local key-value table.
type kvEntry struct {
	bun.BaseModel `bun:"table:local_storage,alias:ls"`

	Key   string `bun:",pk"`
	Value string `bun:",notnull"`
}

// storedTask is the persisted shape of one task.
type storedTask struct {
	Key      string   `json:"key,omitempty"`
	Text     string   `json:"text"`
	Pending  []string `json:"pending"`
	Deadline string   `json:"deadline"`
}

// Options configures Open.
type Options struct {
	// Key is the local storage key. Defaults to store.DefaultNamespace.
	Key string

	// PollInterval is how often subscriptions re-read the database to pick
	// up other writers. Zero disables polling.
	PollInterval time.Duration

	// Logger receives debug and warning output.
	Logger *slog.Logger
}

// Store implements store.Store on one row of a SQLite database.
type Store struct {
	db   *bun.DB
	key  string
	poll time.Duration
	log  *slog.Logger

	// writeMu serializes this process's transactions; SQLite serializes
	// them across processes.
	writeMu sync.Mutex
	view    *memory.Store
}

// busyTimeout is how long a writer waits for another process's transaction.
const busyTimeout = 5 * time.Second

// OpenDB opens a SQLite database at path. Use ":memory:" for a throwaway database.
// Transactions take the write lock when they begin, so two processes updating
// the same file queue up instead of failing halfway through.
func OpenDB(path string) (*bun.DB, error) {
	dsn := "file:" + path + "?_txlock=immediate"
	if path == ":memory:" {
		dsn = "file::memory:?cache=shared&_txlock=immediate"
	}
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	pragma := fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds())
	if _, err := db.Exec(pragma); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

// Open creates the table if needed and loads the stored task array.
// Missing, empty or malformed data loads as an empty list.
func Open(ctx context.Context, db *bun.DB, opts Options) (*Store, error) {
	s := &Store{
		db:   db,
		key:  opts.Key,
		poll: opts.PollInterval,
		log:  opts.Logger,
	}
	if s.key == "" {
		s.key = store.DefaultNamespace
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if _, err := db.NewCreateTable().Model((*kvEntry)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}

	current, err := s.read(ctx, db)
	if err != nil {
		return nil, err
	}
	s.view = memory.New(memory.Options{Logger: s.log}, current...)
	return s, nil
}

// Snapshot returns the state as of the last read or write.
func (s *Store) Snapshot() store.Snapshot {
	return s.view.Snapshot()
}

// Push implements store.Store.
func (s *Store) Push(ctx context.Context, task store.Task) (string, error) {
	var key string
	err := s.write(ctx, func(ctx context.Context, m *memory.Store) error {
		var err error
		key, err = m.Push(ctx, task)
		return err
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// Update implements store.Store.
func (s *Store) Update(ctx context.Context, path store.Path, value any) error {
	return s.write(ctx, func(ctx context.Context, m *memory.Store) error {
		return m.Update(ctx, path, value)
	})
}

// Remove implements store.Store.
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.write(ctx, func(ctx context.Context, m *memory.Store) error {
		return m.Remove(ctx, key)
	})
}

// SubscribeToAll implements store.Store. The first snapshot is read from the
// database; later ones follow this process's writes and, when polling is
// enabled, other processes' writes.
func (s *Store) SubscribeToAll(ctx context.Context, fn func(store.Snapshot)) (func(), error) {
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	stop, err := s.view.SubscribeToAll(ctx, fn)
	if err != nil {
		cancel()
		return nil, err
	}
	if s.poll > 0 {
		go s.watch(ctx)
	}
	return func() {
		stop()
		cancel()
	}, nil
}

// Refresh re-reads the database and broadcasts the result if it changed.
func (s *Store) Refresh(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.read(ctx, s.db)
	if err != nil {
		return err
	}
	if !sameState(current, s.view.Snapshot()) {
		s.log.Debug("local tasks changed on disk", "key", s.key)
		s.view.Replace(current)
	}
	return nil
}

func (s *Store) watch(ctx context.Context) {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				s.log.Warn("refresh failed", "key", s.key, "error", err)
			}
		}
	}
}

// write applies op to the stored state inside one transaction, then
// publishes the committed state to subscribers.
func (s *Store) write(ctx context.Context, op func(context.Context, *memory.Store) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var next store.Snapshot
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, err := s.read(ctx, tx)
		if err != nil {
			return err
		}
		scratch := memory.New(memory.Options{Logger: s.log}, current...)
		if err := op(ctx, scratch); err != nil {
			return err
		}
		next = scratch.Snapshot()
		return s.save(ctx, tx, next)
	})
	if err != nil {
		return err
	}
	s.view.Replace(next)
	return nil
}

// read loads the stored entries. Malformed data reads as an empty list.
func (s *Store) read(ctx context.Context, db bun.IDB) (store.Snapshot, error) {
	var entry kvEntry
	err := db.NewSelect().Model(&entry).Where("key = ?", s.key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.key, err)
	}
	entries, err := Decode(entry.Value)
	if err != nil {
		s.log.Warn("ignoring malformed local tasks", "key", s.key, "error", err)
		return store.Snapshot{}, nil
	}
	return store.Snapshot(entries), nil
}

func (s *Store) save(ctx context.Context, db bun.IDB, snap store.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	entry := &kvEntry{Key: s.key, Value: string(data)}
	_, err = db.NewInsert().Model(entry).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}
	return nil
}

func sameState(a, b store.Snapshot) bool {
	da, errA := Encode(a)
	db, errB := Encode(b)
	return errA == nil && errB == nil && bytes.Equal(da, db)
}

// Encode renders a snapshot as the persisted task array.
func Encode(snap store.Snapshot) ([]byte, error) {
	out := make([]storedTask, len(snap))
	for i, e := range snap {
		out[i] = storedTask{
			Key:      e.Key,
			Text:     e.Task.Text,
			Pending:  e.Task.PendingNames(),
			Deadline: e.Task.Deadline,
		}
	}
	return json.Marshal(out)
}

// Decode parses a persisted task array. Blank input and JSON null decode to
// no entries. Elements without a key, as written by the page, get one derived
// from their position and text, so every reader of the same data agrees on it.
func Decode(raw string) ([]store.Entry, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var stored []storedTask
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	entries := make([]store.Entry, 0, len(stored))
	for i, t := range stored {
		key := t.Key
		if key == "" {
			key = derivedKey(i, t.Text)
		}
		entries = append(entries, store.Entry{Key: key, Task: store.NewTask(t.Text, t.Deadline, t.Pending)})
	}
	return entries, nil
}

func derivedKey(i int, text string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strconv.Itoa(i)+"\x00"+text)).String()
}
