package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"sharedtodo/internal/config"
	"sharedtodo/internal/exitcode"
	"sharedtodo/internal/roster"
	"sharedtodo/internal/store"
	"sharedtodo/internal/todo"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes         bool
	interactive *bool
}

// SetInteractive forces whether stdin is treated as a terminal (for testing).
func (c *RmCmd) SetInteractive(v bool) {
	c.interactive = &v
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "sharedtodo rm [--yes] <n>" }
func (c *RmCmd) NeedsStore() bool  { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, in io.Reader, out, errOut io.Writer) int {
	n, err := ParseRowRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
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

	var confirm todo.Confirmer = todo.Confirmed(true)
	if !c.yes {
		if !c.isInteractive(in) {
			fmt.Fprintln(errOut, "error: confirmation required (use --yes)")
			return exitcode.UserError
		}
		confirm = promptConfirmer(in, errOut)
	}

	m := todo.NewMutator(st, roster.Default, todo.WithLogger(cfg.Logger))
	deleted, err := m.Delete(ctx, entry.Key, confirm)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fmt.Fprintln(errOut, "error: task not found")
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		if deleted {
			fmt.Fprintln(out, "ok")
		} else {
			fmt.Fprintln(out, "not deleted")
		}
	}
	return exitcode.Success
}

func (c *RmCmd) isInteractive(in io.Reader) bool {
	if c.interactive != nil {
		return *c.interactive
	}
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// promptConfirmer asks on errOut and reads a y/N answer from in.
func promptConfirmer(in io.Reader, errOut io.Writer) todo.Confirmer {
	return todo.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(errOut, "%s [y/N] ", prompt)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}
