// Package roster defines the fixed set of participants who share the task list.
package roster

// Friend is a participant identity with its display glyph.
type Friend struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// Roster is an immutable, ordered set of friends.
// The order is the display order used for selectors and pending glyphs.
type Roster struct {
	friends []Friend
	index   map[string]int
}

// New creates a roster from the given friends.
// Later duplicates of a name are ignored.
func New(friends ...Friend) Roster {
	r := Roster{index: make(map[string]int, len(friends))}
	for _, f := range friends {
		if _, dup := r.index[f.Name]; dup {
			continue
		}
		r.index[f.Name] = len(r.friends)
		r.friends = append(r.friends, f)
	}
	return r
}

// Default is the roster of twelve friends the page ships with.
var Default = New(
	Friend{Name: "Alice", Emoji: "🐱"},
	Friend{Name: "Bob", Emoji: "🐶"},
	Friend{Name: "Cara", Emoji: "🐼"},
	Friend{Name: "Dan", Emoji: "🦊"},
	Friend{Name: "Eva", Emoji: "🐰"},
	Friend{Name: "Finn", Emoji: "🐸"},
	Friend{Name: "Gina", Emoji: "🐥"},
	Friend{Name: "Hank", Emoji: "🐯"},
	Friend{Name: "Ivy", Emoji: "🦁"},
	Friend{Name: "Jay", Emoji: "🐨"},
	Friend{Name: "Kay", Emoji: "🐷"},
	Friend{Name: "Leo", Emoji: "🐻"},
)

// Len returns the number of friends.
func (r Roster) Len() int { return len(r.friends) }

// Friends returns a copy of the friends in roster order.
func (r Roster) Friends() []Friend {
	out := make([]Friend, len(r.friends))
	copy(out, r.friends)
	return out
}

// Names returns the friend names in roster order.
func (r Roster) Names() []string {
	out := make([]string, len(r.friends))
	for i, f := range r.friends {
		out[i] = f.Name
	}
	return out
}

// Lookup finds a friend by exact name.
func (r Roster) Lookup(name string) (Friend, bool) {
	i, ok := r.index[name]
	if !ok {
		return Friend{}, false
	}
	return r.friends[i], true
}

// Has reports whether name belongs to the roster.
func (r Roster) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// First returns the first friend, which selectors use as their initial value.
func (r Roster) First() (Friend, bool) {
	if len(r.friends) == 0 {
		return Friend{}, false
	}
	return r.friends[0], true
}
