// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task or friend,
	// declined confirmation).
	UserError = 1

	// AuthError indicates a credentials problem or acting as the wrong friend.
	AuthError = 2

	// BackendError indicates a task store, API or network error.
	BackendError = 3
)
