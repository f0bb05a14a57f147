package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sync"

	"sharedtodo/internal/config"
	"sharedtodo/internal/exitcode"
	"sharedtodo/internal/output"
	"sharedtodo/internal/roster"
	"sharedtodo/internal/store"
	"sharedtodo/internal/todo"
)

func init() {
	Register(&WatchCmd{})
}

// WatchCmd implements the watch command. It reprints the whole list after
// every change until interrupted.
type WatchCmd struct{}

func (c *WatchCmd) Name() string      { return "watch" }
func (c *WatchCmd) Aliases() []string { return nil }
func (c *WatchCmd) Synopsis() string  { return "Print the list again after every change" }
func (c *WatchCmd) Usage() string     { return "sharedtodo watch" }
func (c *WatchCmd) NeedsStore() bool  { return true }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WatchCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, in io.Reader, out, errOut io.Writer) int {
	var mu sync.Mutex
	cancel, err := st.SubscribeToAll(ctx, func(snap store.Snapshot) {
		rows := todo.Render(snap, roster.Default)
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, output.Separator)
		output.FormatRows(out, rows)
	})
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	defer cancel()

	<-ctx.Done()
	return exitcode.Success
}
