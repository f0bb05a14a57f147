package pdfgen

import (
	"fmt"
	"io"
)

// Canvas draws text in the styled face. Coordinates are millimetres from
// the top-left corner of the page.
type Canvas interface {
	// Measure returns the width of s.
	Measure(s string) float64
	// NewPage finishes the current page and starts another.
	NewPage() error
	// Show draws s with its left baseline point at (x, y).
	Show(x, y float64, s string) error
	// Close finishes the document.
	Close() error
}

// Typeset lays out text and draws it on c, starting on c's current page.
func Typeset(text string, st Style, c Canvas) error {
	page := 0
	for _, p := range Layout(text, st, c.Measure) {
		for page < p.Page {
			if err := c.NewPage(); err != nil {
				return fmt.Errorf("new page: %w", err)
			}
			page++
		}
		if p.Text == "" {
			continue
		}
		if err := c.Show(p.X, p.Y, p.Text); err != nil {
			return fmt.Errorf("draw text: %w", err)
		}
	}
	return nil
}

// Generate writes the PDF for req to w.
func Generate(w io.Writer, req Request) error {
	st := req.Style()
	c, err := newDocument(w, st)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := Typeset(req.Text, st, c); err != nil {
		c.Close()
		return err
	}
	if err := c.Close(); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
