// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"sharedtodo/internal/roster"
	"sharedtodo/internal/todo"
)

const (
	// Separator is the separator line printed between watch refreshes.
	Separator = "------------"

	// rowIndent aligns detail lines under the row text.
	rowIndent = "      "
)

// FormatRow formats one task row.
// Format: "{N:>4}  {TEXT}\n", then an indented deadline line if set,
// then an indented line of pending glyphs if any.
func FormatRow(w io.Writer, num int, row todo.Row) {
	fmt.Fprintf(w, "%4d  %s\n", num, normalizeText(row.Text))
	if row.DeadlineLabel != "" {
		fmt.Fprintf(w, "%s%s\n", rowIndent, row.DeadlineLabel)
	}
	if len(row.Glyphs) > 0 {
		fmt.Fprintf(w, "%s%s\n", rowIndent, FormatGlyphs(row.Glyphs))
	}
}

// FormatRows formats rows numbered from 1, or "(no tasks)" when empty.
func FormatRows(w io.Writer, rows []todo.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no tasks)")
		return
	}
	for i, row := range rows {
		FormatRow(w, i+1, row)
	}
}

// FormatGlyphs joins glyphs as "🐱 Alice  🐶 Bob".
func FormatGlyphs(glyphs []todo.Glyph) string {
	parts := make([]string, len(glyphs))
	for i, g := range glyphs {
		parts[i] = g.Emoji + " " + g.Name
	}
	return strings.Join(parts, "  ")
}

// FormatFriend formats a roster entry, marking the acting identity.
func FormatFriend(w io.Writer, f roster.Friend, current bool) {
	line := f.Emoji + " " + f.Name
	if current {
		line += " [you]"
	}
	fmt.Fprintln(w, line)
}

// normalizeText normalizes task text for display.
// - Empty or whitespace-only text becomes "(untitled)"
// - Newlines are replaced with spaces
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
