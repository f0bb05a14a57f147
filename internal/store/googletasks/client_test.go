package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"sharedtodo/internal/store"
)

// fakeTasksAPI serves the subset of the Google Tasks REST API the client uses.
type fakeTasksAPI struct {
	mu     sync.Mutex
	lists  []*tasks.TaskList
	items  map[string][]*tasks.Task // listID -> tasks
	nextID int
}

func newFakeTasksAPI() *fakeTasksAPI {
	return &fakeTasksAPI{items: make(map[string][]*tasks.Task)}
}

func (f *fakeTasksAPI) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakeTasksAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/tasks/v1/")
	parts := strings.Split(path, "/")

	switch {
	case path == "users/@me/lists" && r.Method == http.MethodGet:
		writeJSON(w, &tasks.TaskLists{Items: f.lists})

	case path == "users/@me/lists" && r.Method == http.MethodPost:
		var l tasks.TaskList
		json.NewDecoder(r.Body).Decode(&l)
		l.Id = f.id("list")
		f.lists = append(f.lists, &l)
		writeJSON(w, &l)

	case len(parts) == 3 && parts[0] == "lists" && parts[2] == "tasks":
		listID := parts[1]
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, &tasks.Tasks{Items: f.items[listID]})
		case http.MethodPost:
			var t tasks.Task
			json.NewDecoder(r.Body).Decode(&t)
			t.Id = f.id("task")
			f.items[listID] = append(f.items[listID], &t)
			writeJSON(w, &t)
		}

	case len(parts) == 4 && parts[0] == "lists" && parts[2] == "tasks":
		listID, taskID := parts[1], parts[3]
		idx := -1
		for i, t := range f.items[listID] {
			if t.Id == taskID {
				idx = i
			}
		}
		if idx < 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"code":404,"message":"not found"}}`)
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, f.items[listID][idx])
		case http.MethodPatch:
			var patch tasks.Task
			json.NewDecoder(r.Body).Decode(&patch)
			if patch.Notes != "" {
				f.items[listID][idx].Notes = patch.Notes
			}
			writeJSON(w, f.items[listID][idx])
		case http.MethodDelete:
			f.items[listID] = append(f.items[listID][:idx], f.items[listID][idx+1:]...)
			w.WriteHeader(http.StatusNoContent)
		}

	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, api *fakeTasksAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := NewWithHTTPClient(context.Background(), srv.Client(),
		Options{PollInterval: 20 * time.Millisecond},
		option.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestClient_PushCreatesNamespaceList(t *testing.T) {
	api := newFakeTasksAPI()
	c := newTestClient(t, api)
	ctx := context.Background()

	key, err := c.Push(ctx, store.NewTask("Buy milk", "2024-01-01", []string{"Alice", "Bob"}))
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if key == "" {
		t.Fatal("expected a key")
	}
	if len(api.lists) != 1 || api.lists[0].Title != store.DefaultNamespace {
		t.Fatalf("expected namespace list to be created, got %+v", api.lists)
	}

	snap, err := c.fetch(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	task, ok := snap.Get(key)
	if !ok {
		t.Fatalf("task %s not found", key)
	}
	if task.Text != "Buy milk" || task.Deadline != "2024-01-01" {
		t.Errorf("unexpected task: %+v", task)
	}
	if diff := cmp.Diff([]string{"Alice", "Bob"}, task.PendingNames()); diff != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_ReusesExistingList(t *testing.T) {
	api := newFakeTasksAPI()
	api.lists = []*tasks.TaskList{{Id: "existing", Title: "SharedTasks "}}
	c := newTestClient(t, api)

	if _, err := c.Push(context.Background(), store.NewTask("t", "", nil)); err != nil {
		t.Fatalf("push: %v", err)
	}
	if len(api.lists) != 1 {
		t.Errorf("expected no new list, got %d lists", len(api.lists))
	}
	if len(api.items["existing"]) != 1 {
		t.Errorf("expected task in existing list")
	}
}

func TestClient_UpdateAndRemove(t *testing.T) {
	api := newFakeTasksAPI()
	c := newTestClient(t, api)
	ctx := context.Background()

	key, _ := c.Push(ctx, store.NewTask("t", "", []string{"Alice", "Bob"}))
	if err := c.Update(ctx, store.PendingPath(key, "Alice"), nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	snap, _ := c.fetch(ctx)
	task, _ := snap.Get(key)
	if diff := cmp.Diff([]string{"Bob"}, task.PendingNames()); diff != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", diff)
	}

	if err := c.Remove(ctx, key); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := c.Remove(ctx, key); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_SubscribeSeesOwnWrites(t *testing.T) {
	api := newFakeTasksAPI()
	c := newTestClient(t, api)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := make(chan store.Snapshot, 8)
	unsubscribe, err := c.SubscribeToAll(ctx, func(s store.Snapshot) { ch <- s })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()

	if first := <-ch; len(first) != 0 {
		t.Fatalf("expected empty initial snapshot, got %d", len(first))
	}
	if _, err := c.Push(ctx, store.NewTask("new", "", nil)); err != nil {
		t.Fatalf("push: %v", err)
	}

	select {
	case snap := <-ch:
		if len(snap) != 1 || snap[0].Task.Text != "new" {
			t.Errorf("unexpected snapshot: %+v", snap)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestDecodeNotes_ForeignTask(t *testing.T) {
	task := decodeNotes("Added by hand", "remember the receipt")
	if task.Text != "Added by hand" || task.Deadline != "" || len(task.Pending) != 0 {
		t.Errorf("unexpected task: %+v", task)
	}
}

func TestEncodeNotes_RoundTrip(t *testing.T) {
	in := store.NewTask("t", "2024-05-01", []string{"Cara"})
	raw, err := encodeNotes(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := decodeNotes("t", raw)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("task mismatch (-want +got):\n%s", diff)
	}
}
