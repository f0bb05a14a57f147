package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"sharedtodo/internal/config"
	"sharedtodo/internal/exitcode"
	"sharedtodo/internal/roster"
	"sharedtodo/internal/store"
	"sharedtodo/internal/todo"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	deadline string
}

// SetDeadline sets the deadline (for testing).
func (c *AddCmd) SetDeadline(deadline string) {
	c.deadline = deadline
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task pending on every friend" }
func (c *AddCmd) Usage() string     { return "sharedtodo add [--deadline <date>] <text...>" }
func (c *AddCmd) NeedsStore() bool  { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.deadline, "deadline", "", "")
	fs.StringVar(&c.deadline, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, in io.Reader, out, errOut io.Writer) int {
	m := todo.NewMutator(st, roster.Default, todo.WithLogger(cfg.Logger))

	_, err := m.Create(ctx, strings.Join(args, " "), c.deadline)
	if err != nil {
		if errors.Is(err, todo.ErrEmptyText) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
