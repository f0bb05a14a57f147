package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"sharedtodo/internal/config"
	"sharedtodo/internal/exitcode"
	"sharedtodo/internal/store"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "sharedtodo help" }
func (c *HelpCmd) NeedsStore() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, in io.Reader, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	fmt.Fprintln(out, "\nCommands:")
	for _, cmd := range DefaultRegistry.All() {
		fmt.Fprintf(out, "  %-8s %s\n", cmd.Name(), cmd.Synopsis())
	}
	return exitcode.Success
}

const helpText = `Usage:
  sharedtodo                                   List all tasks
  sharedtodo list [common flags]
  sharedtodo add [common flags] [--deadline <date>] <text...>
  sharedtodo rm [common flags] [--yes] <n>
  sharedtodo ack [common flags] <n> [friend]
  sharedtodo watch [common flags]
  sharedtodo roster [common flags]
  sharedtodo pdf [common flags] [--font <key>] [--size <pt>] [--color <#rrggbb>]
                 [--align left|center|right] [--out <file>] [text...]
  sharedtodo serve [common flags] [--addr <host:port>]
  sharedtodo login [common flags]
  sharedtodo logout [common flags]
  sharedtodo help
  sharedtodo version

Common flags:
  --config <dir>     Override config directory
  --backend <name>   Task store: memory, local or googletasks
  --as <name>        Act as this friend
  --quiet            Suppress informational output
  --debug            Print debug logs to stderr
`
