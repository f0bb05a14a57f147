package todo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"sharedtodo/internal/roster"
	"sharedtodo/internal/store"
)

// DeletePrompt is the question asked before a task is deleted.
const DeletePrompt = "Are you sure you want to delete this task?"

var (
	// ErrEmptyText is returned by Create when the text is blank.
	ErrEmptyText = errors.New("task text required")

	// ErrUnknownFriend is returned for names outside the roster.
	ErrUnknownFriend = errors.New("unknown friend")
)

// NotAuthorizedError is returned when someone other than Required tries to
// acknowledge Required's glyph.
type NotAuthorizedError struct {
	Required string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("Only %s can remove their emoji!", e.Required)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Confirmed answers yes (true) or no (false) without asking.
type Confirmed bool

// Confirm returns the fixed answer.
func (c Confirmed) Confirm(string) bool { return bool(c) }

// Mutator turns local user actions into store writes.
type Mutator struct {
	store  store.Store
	roster roster.Roster
	log    *slog.Logger
}

// Option configures a Mutator.
type Option func(*Mutator)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mutator) {
		if l != nil {
			m.log = l
		}
	}
}

// NewMutator creates a mutator writing to st on behalf of members of r.
func NewMutator(st store.Store, r roster.Roster, opts ...Option) *Mutator {
	m := &Mutator{
		store:  st,
		roster: r,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Roster returns the roster the mutator authorizes against.
func (m *Mutator) Roster() roster.Roster { return m.roster }

// Create pushes a new task pending on every friend and returns its key.
// The text is trimmed and normalized; the deadline is stored as given.
func (m *Mutator) Create(ctx context.Context, text, deadline string) (string, error) {
	text = norm.NFC.String(strings.TrimSpace(text))
	if text == "" {
		return "", ErrEmptyText
	}

	key, err := m.store.Push(ctx, store.NewTask(text, deadline, m.roster.Names()))
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	m.log.Debug("task created", "key", key)
	return key, nil
}

// Delete removes the task under key once confirm agrees.
// It reports whether the task was deleted.
func (m *Mutator) Delete(ctx context.Context, key string, confirm Confirmer) (bool, error) {
	if confirm == nil || !confirm.Confirm(DeletePrompt) {
		return false, nil
	}
	if err := m.store.Remove(ctx, key); err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	m.log.Debug("task deleted", "key", key)
	return true, nil
}

// Acknowledge removes friend from the task's pending set.
// Only the friend themselves may do so. Acknowledging twice is a no-op.
func (m *Mutator) Acknowledge(ctx context.Context, who Identity, key, friend string) error {
	if !m.roster.Has(friend) {
		return fmt.Errorf("%w: %s", ErrUnknownFriend, friend)
	}
	if who == nil || who.Current() != friend {
		return &NotAuthorizedError{Required: friend}
	}
	if err := m.store.Update(ctx, store.PendingPath(key, friend), nil); err != nil {
		return fmt.Errorf("acknowledge task: %w", err)
	}
	m.log.Debug("task acknowledged", "key", key, "friend", friend)
	return nil
}
