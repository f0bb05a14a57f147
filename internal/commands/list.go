package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"sharedtodo/internal/config"
	"sharedtodo/internal/exitcode"
	"sharedtodo/internal/output"
	"sharedtodo/internal/roster"
	"sharedtodo/internal/store"
	"sharedtodo/internal/todo"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
type ListCmd struct{}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List all tasks" }
func (c *ListCmd) Usage() string     { return "sharedtodo list" }
func (c *ListCmd) NeedsStore() bool  { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	snap, err := store.Fetch(ctx, st)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	output.FormatRows(out, todo.Render(snap, roster.Default))
	return exitcode.Success
}
