package commands

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"sharedtodo/internal/config"
	"sharedtodo/internal/exitcode"
	"sharedtodo/internal/pdfgen"
	"sharedtodo/internal/store"
)

func init() {
	Register(&PdfCmd{})
}

// PdfCmd implements the pdf command.
type PdfCmd struct {
	font  string
	size  string
	color string
	align string
	out   string
}

func (c *PdfCmd) Name() string      { return "pdf" }
func (c *PdfCmd) Aliases() []string { return nil }
func (c *PdfCmd) Synopsis() string  { return "Render text into a PDF" }
func (c *PdfCmd) Usage() string {
	return "sharedtodo pdf [--font Font1|Font2|Font3] [--size <pt>] [--color #rrggbb] [--align left|center|right] [--out <file>] [text...]"
}
func (c *PdfCmd) NeedsStore() bool { return false }

func (c *PdfCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.font, "font", pdfgen.DefaultFace.Key, "")
	fs.StringVar(&c.size, "size", "", "")
	fs.StringVar(&c.color, "color", "#000000", "")
	fs.StringVar(&c.align, "align", string(pdfgen.AlignLeft), "")
	fs.StringVar(&c.out, "out", pdfgen.Filename, "")
	fs.StringVar(&c.out, "o", pdfgen.Filename, "")
}

func (c *PdfCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, in io.Reader, out, errOut io.Writer) int {
	text := strings.Join(args, " ")
	if len(args) == 0 && in != nil {
		// No arguments: read the text from stdin.
		data, err := io.ReadAll(in)
		if err != nil {
			fmt.Fprintf(errOut, "error: failed to read text: %v\n", err)
			return exitcode.UserError
		}
		text = strings.TrimRight(string(data), "\n")
	}

	path := c.out
	if path == "" {
		path = pdfgen.Filename
	}

	req := pdfgen.Request{
		Text:  text,
		Font:  c.font,
		Size:  pdfgen.ParseSize(c.size),
		Color: c.color,
		Align: c.align,
	}

	var buf bytes.Buffer
	if err := pdfgen.Generate(&buf, req); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}

	if path == "-" {
		if _, err := out.Write(buf.Bytes()); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return exitcode.Success
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		fmt.Fprintf(errOut, "error: failed to write %s: %v\n", path, err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, path)
	}
	return exitcode.Success
}
