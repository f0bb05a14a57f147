// Package googletasks implements store.Store on top of the Google Tasks API.
//
// The namespace maps to one task list, found by title and created on first
// use. Task text is the Google task title; the deadline and the pending set
// are kept as JSON in the task notes. Subscriptions poll the list and emit a
// snapshot whenever its content changes; local writes trigger an immediate poll.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"sharedtodo/internal/config"
	"sharedtodo/internal/store"
)

const (
	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// DefaultPollInterval is how often subscriptions re-read the list.
	DefaultPollInterval = 5 * time.Second

	// TasksScope is the OAuth scope for Google Tasks.
	TasksScope = "https://www.googleapis.com/auth/tasks"
)

// Options configures a Client.
type Options struct {
	// Namespace is the title of the task list holding the shared tasks.
	Namespace string

	// PollInterval is the subscription polling period.
	PollInterval time.Duration

	Logger *slog.Logger
}

// Client implements store.Store using Google Tasks API.
type Client struct {
	svc  *tasks.Service
	opts Options
	log  *slog.Logger

	listMu sync.Mutex
	listID string

	subMu    sync.Mutex
	triggers map[chan struct{}]struct{}
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	// Load OAuth client config
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, TasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Token source refreshes automatically; the context must outlive the client.
	tokenSource := oauthConfig.TokenSource(context.Background(), &token)
	httpClient := oauth2.NewClient(context.Background(), tokenSource)

	return NewWithHTTPClient(ctx, httpClient, Options{
		Namespace:    cfg.Namespace,
		PollInterval: cfg.PollInterval,
		Logger:       cfg.Logger,
	})
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts Options, extra ...option.ClientOption) (*Client, error) {
	clientOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, extra...)
	svc, err := tasks.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	if opts.Namespace == "" {
		opts.Namespace = store.DefaultNamespace
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		svc:      svc,
		opts:     opts,
		log:      log,
		triggers: make(map[chan struct{}]struct{}),
	}, nil
}

// notes is the JSON kept in a Google task's notes field.
type notes struct {
	Deadline string          `json:"deadline,omitempty"`
	Pending  map[string]bool `json:"pending"`
}

func encodeNotes(t store.Task) (string, error) {
	n := notes{Deadline: t.Deadline, Pending: t.Clone().Pending}
	data, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeNotes rebuilds a task from a Google task. Notes that are not ours
// (edited by hand, or a task created elsewhere) yield an empty pending set.
func decodeNotes(title, raw string) store.Task {
	t := store.Task{Text: title, Pending: make(map[string]bool)}
	var n notes
	if strings.TrimSpace(raw) == "" || json.Unmarshal([]byte(raw), &n) != nil {
		return t
	}
	t.Deadline = n.Deadline
	for name, v := range n.Pending {
		if v {
			t.Pending[name] = true
		}
	}
	return t
}

// list returns the ID of the namespace list, creating the list if needed.
func (c *Client) list(ctx context.Context) (string, error) {
	c.listMu.Lock()
	defer c.listMu.Unlock()
	if c.listID != "" {
		return c.listID, nil
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	want := strings.ToLower(strings.TrimSpace(c.opts.Namespace))
	var found []string
	err := c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, l := range resp.Items {
			if strings.ToLower(strings.TrimSpace(l.Title)) == want {
				found = append(found, l.Id)
			}
		}
		return nil
	})
	if err != nil {
		return "", wrapError(err)
	}

	switch len(found) {
	case 0:
		created, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: c.opts.Namespace}).Context(ctx).Do()
		if err != nil {
			return "", wrapError(err)
		}
		c.log.Debug("created task list", "title", c.opts.Namespace, "id", created.Id)
		c.listID = created.Id
	case 1:
		c.listID = found[0]
	default:
		return "", fmt.Errorf("ambiguous list name: %s", c.opts.Namespace)
	}
	return c.listID, nil
}

// fetch reads all open tasks of the namespace list in API order.
func (c *Client) fetch(ctx context.Context) (store.Snapshot, error) {
	listID, err := c.list(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	snap := store.Snapshot{}
	err = c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(false).
		ShowDeleted(false).
		ShowHidden(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				snap = append(snap, store.Entry{Key: t.Id, Task: decodeNotes(t.Title, t.Notes)})
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return snap, nil
}

// Push implements store.Store.
func (c *Client) Push(ctx context.Context, task store.Task) (string, error) {
	listID, err := c.list(ctx)
	if err != nil {
		return "", err
	}
	body, err := encodeNotes(task)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	created, err := c.svc.Tasks.Insert(listID, &tasks.Task{Title: task.Text, Notes: body}).Context(ctx).Do()
	if err != nil {
		return "", wrapError(err)
	}
	c.refresh()
	return created.Id, nil
}

// Update implements store.Store.
// The Tasks API has no partial JSON update, so the notes are read, changed
// and written back within this call.
func (c *Client) Update(ctx context.Context, path store.Path, value any) error {
	listID, err := c.list(ctx)
	if err != nil {
		return err
	}
	key := path.Key()

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	current, err := c.svc.Tasks.Get(listID, key).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	task := decodeNotes(current.Title, current.Notes)
	if err := store.Apply(&task, path[1:], value); err != nil {
		return err
	}
	body, err := encodeNotes(task)
	if err != nil {
		return err
	}

	_, err = c.svc.Tasks.Patch(listID, key, &tasks.Task{Notes: body}).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	c.refresh()
	return nil
}

// Remove implements store.Store.
func (c *Client) Remove(ctx context.Context, key string) error {
	listID, err := c.list(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(listID, key).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	c.refresh()
	return nil
}

// SubscribeToAll implements store.Store.
// The first poll happens synchronously so that setup errors surface here.
func (c *Client) SubscribeToAll(ctx context.Context, fn func(store.Snapshot)) (func(), error) {
	snap, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	trigger := make(chan struct{}, 1)
	c.subMu.Lock()
	c.triggers[trigger] = struct{}{}
	c.subMu.Unlock()

	go func() {
		defer func() {
			c.subMu.Lock()
			delete(c.triggers, trigger)
			c.subMu.Unlock()
		}()

		last := fingerprint(snap)
		fn(snap)

		ticker := time.NewTicker(c.opts.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			case <-trigger:
			}
			next, err := c.fetch(ctx)
			if err != nil {
				if ctx.Err() == nil {
					c.log.Warn("poll failed", "error", err)
				}
				continue
			}
			if fp := fingerprint(next); fp != last {
				last = fp
				fn(next)
			}
		}
	}()

	return cancel, nil
}

// refresh asks every subscription to poll now.
func (c *Client) refresh() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for ch := range c.triggers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func fingerprint(snap store.Snapshot) string {
	data, _ := json.Marshal(snap)
	return string(data)
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	// Check for timeout
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("token expired or revoked (run: sharedtodo login)")
		case http.StatusNotFound:
			return store.ErrNotFound
		}
	}

	return err
}
