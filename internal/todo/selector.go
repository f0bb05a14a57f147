package todo

import (
	"fmt"
	"sync"

	"sharedtodo/internal/roster"
)

// Identity reports which roster name is acting locally.
type Identity interface {
	Current() string
}

// Acting is a fixed identity, used for one request or one command.
type Acting string

// Current returns the name itself.
func (a Acting) Current() string { return string(a) }

// Selector tracks the locally selected friend. It is a selection, not an
// authenticated identity.
type Selector struct {
	mu      sync.RWMutex
	roster  roster.Roster
	current string
}

// NewSelector returns a selector preset to the first friend of r.
func NewSelector(r roster.Roster) *Selector {
	s := &Selector{roster: r}
	if f, ok := r.First(); ok {
		s.current = f.Name
	}
	return s
}

// Select changes the current identity. The name must belong to the roster.
func (s *Selector) Select(name string) error {
	if !s.roster.Has(name) {
		return fmt.Errorf("%w: %s", ErrUnknownFriend, name)
	}
	s.mu.Lock()
	s.current = name
	s.mu.Unlock()
	return nil
}

// Current returns the selected name.
func (s *Selector) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
