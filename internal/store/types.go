package store

import (
	"sort"
	"strings"
)

// DefaultNamespace is the top-level namespace tasks are stored under.
const DefaultNamespace = "sharedTasks"

// Task is the stored shape of a shared task.
type Task struct {
	Text     string          `json:"text"`
	Deadline string          `json:"deadline"`
	Pending  map[string]bool `json:"pending,omitempty"`
}

// NewTask creates a task whose pending set holds the given names.
func NewTask(text, deadline string, pending []string) Task {
	t := Task{Text: text, Deadline: deadline, Pending: make(map[string]bool, len(pending))}
	for _, name := range pending {
		t.Pending[name] = true
	}
	return t
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	c.Pending = make(map[string]bool, len(t.Pending))
	for name, v := range t.Pending {
		if v {
			c.Pending[name] = true
		}
	}
	return c
}

// IsPending reports whether name still owes an acknowledgment.
func (t Task) IsPending(name string) bool {
	return t.Pending[name]
}

// PendingNames returns the pending names sorted alphabetically.
func (t Task) PendingNames() []string {
	names := make([]string, 0, len(t.Pending))
	for name, v := range t.Pending {
		if v {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Entry is one keyed task inside a snapshot.
type Entry struct {
	Key  string
	Task Task
}

// Snapshot is the complete state of all tasks in store iteration order.
type Snapshot []Entry

// Get returns the task stored under key.
func (s Snapshot) Get(key string) (Task, bool) {
	for _, e := range s {
		if e.Key == key {
			return e.Task, true
		}
	}
	return Task{}, false
}

// Keys returns the task keys in iteration order.
func (s Snapshot) Keys() []string {
	keys := make([]string, len(s))
	for i, e := range s {
		keys[i] = e.Key
	}
	return keys
}

// Clone returns a deep copy of the snapshot. A nil snapshot clones to an empty one.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for i, e := range s {
		out[i] = Entry{Key: e.Key, Task: e.Task.Clone()}
	}
	return out
}

// Path addresses a value inside the namespace, e.g. "<key>/pending/<name>".
type Path []string

// PendingPath addresses one entry of a task's pending set.
func PendingPath(key, name string) Path {
	return Path{key, "pending", name}
}

// PendingSetPath addresses a task's whole pending set.
func PendingSetPath(key string) Path {
	return Path{key, "pending"}
}

// ParsePath splits a slash-separated path. Empty segments are dropped.
func ParsePath(s string) Path {
	var p Path
	for _, seg := range strings.Split(s, "/") {
		if seg != "" {
			p = append(p, seg)
		}
	}
	return p
}

// Key returns the task key the path starts with.
func (p Path) Key() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

func (p Path) String() string {
	return strings.Join(p, "/")
}
