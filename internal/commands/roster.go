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
)

func init() {
	Register(&RosterCmd{})
}

// RosterCmd implements the roster command.
type RosterCmd struct{}

func (c *RosterCmd) Name() string      { return "roster" }
func (c *RosterCmd) Aliases() []string { return []string{"friends"} }
func (c *RosterCmd) Synopsis() string  { return "List the friends sharing the list" }
func (c *RosterCmd) Usage() string     { return "sharedtodo roster [--as <name>]" }
func (c *RosterCmd) NeedsStore() bool  { return false }

func (c *RosterCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RosterCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, in io.Reader, out, errOut io.Writer) int {
	if cfg.Identity != "" && !roster.Default.Has(cfg.Identity) {
		fmt.Fprintf(errOut, "error: unknown friend: %s\n", cfg.Identity)
		return exitcode.UserError
	}
	for _, f := range roster.Default.Friends() {
		output.FormatFriend(out, f, f.Name == cfg.Identity)
	}
	return exitcode.Success
}
