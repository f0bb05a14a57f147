// Package todo holds the shared to-do core: rendering snapshots into rows,
// mutating the store on behalf of a local identity, and tracking that identity.
package todo

import (
	"sharedtodo/internal/roster"
	"sharedtodo/internal/store"
)

// DeadlinePrefix precedes a task's deadline wherever it is shown.
const DeadlinePrefix = "⏰ Deadline: "

// Glyph is one pending acknowledgment shown on a row.
type Glyph struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// Row is the view model of one task.
type Row struct {
	Key           string  `json:"key"`
	Text          string  `json:"text"`
	Deadline      string  `json:"deadline,omitempty"`
	DeadlineLabel string  `json:"deadlineLabel,omitempty"`
	Glyphs        []Glyph `json:"glyphs"`
}

// Render builds the complete list of rows for snap.
// Rows follow snapshot order and glyphs follow roster order. Pending names
// missing from the roster are skipped. The result is never nil.
func Render(snap store.Snapshot, r roster.Roster) []Row {
	rows := make([]Row, 0, len(snap))
	for _, e := range snap {
		row := Row{
			Key:      e.Key,
			Text:     e.Task.Text,
			Deadline: e.Task.Deadline,
			Glyphs:   []Glyph{},
		}
		if e.Task.Deadline != "" {
			row.DeadlineLabel = DeadlinePrefix + e.Task.Deadline
		}
		for _, f := range r.Friends() {
			if e.Task.IsPending(f.Name) {
				row.Glyphs = append(row.Glyphs, Glyph{Name: f.Name, Emoji: f.Emoji})
			}
		}
		rows = append(rows, row)
	}
	return rows
}
