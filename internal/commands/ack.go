package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"sharedtodo/internal/config"
	"sharedtodo/internal/exitcode"
	"sharedtodo/internal/roster"
	"sharedtodo/internal/store"
	"sharedtodo/internal/todo"
)

func init() {
	Register(&AckCmd{})
}

// AckCmd implements the ack command: the acting friend removes their glyph.
type AckCmd struct{}

func (c *AckCmd) Name() string      { return "ack" }
func (c *AckCmd) Aliases() []string { return []string{"done"} }
func (c *AckCmd) Synopsis() string  { return "Remove your emoji from a task" }
func (c *AckCmd) Usage() string     { return "sharedtodo ack [--as <name>] <n> [friend]" }
func (c *AckCmd) NeedsStore() bool  { return true }

func (c *AckCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AckCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, in io.Reader, out, errOut io.Writer) int {
	n, err := ParseRowRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if len(args) > 2 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[2])
		return exitcode.UserError
	}

	sel := todo.NewSelector(roster.Default)
	if cfg.Identity == "" {
		fmt.Fprintln(errOut, "error: no identity selected (use --as <name>)")
		return exitcode.UserError
	}
	if err := sel.Select(cfg.Identity); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	friend := sel.Current()
	if len(args) == 2 {
		friend = args[1]
	}

	entry, err := findRow(ctx, st, n)
	if err != nil {
		var oor errOutOfRange
		if errors.As(err, &oor) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	m := todo.NewMutator(st, roster.Default, todo.WithLogger(cfg.Logger))
	err = m.Acknowledge(ctx, sel, entry.Key, friend)
	var notAuthorized *todo.NotAuthorizedError
	switch {
	case err == nil:
	case errors.As(err, &notAuthorized):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	case errors.Is(err, todo.ErrUnknownFriend):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintln(errOut, "error: task not found")
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
