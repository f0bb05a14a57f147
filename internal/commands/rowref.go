package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"sharedtodo/internal/store"
)

// ErrRowRequired indicates no task number was provided.
var ErrRowRequired = errors.New("task number required")

// ParseRowRef parses the 1-based task number in args[0].
func ParseRowRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrRowRequired
	}
	if !isAllDigits(args[0]) {
		return 0, fmt.Errorf("invalid task number: %s", args[0])
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid task number: %s", args[0])
	}
	return n, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// errOutOfRange is returned by findRow for numbers outside the list.
type errOutOfRange int

func (e errOutOfRange) Error() string {
	return fmt.Sprintf("task number out of range: %d", int(e))
}

// findRow fetches the current snapshot and returns the entry shown as row n.
// Numbering matches the list command: 1-based in store order.
func findRow(ctx context.Context, st store.Store, n int) (store.Entry, error) {
	snap, err := store.Fetch(ctx, st)
	if err != nil {
		return store.Entry{}, err
	}
	if n < 1 || n > len(snap) {
		return store.Entry{}, errOutOfRange(n)
	}
	return snap[n-1], nil
}
