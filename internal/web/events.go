package web

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"sharedtodo/internal/store"
	"sharedtodo/internal/todo"
)

// EventTasks is the SSE event carrying the complete list of rows.
const EventTasks = "tasks"

// handleEvents streams the rendered list to the browser after every change.
// Each event replaces the whole list; a slow client only sees the latest.
func (s *Server) handleEvents(c *gin.Context) {
	ctx := c.Request.Context()
	updates := make(chan []todo.Row, 1)

	cancel, err := s.store.SubscribeToAll(ctx, func(snap store.Snapshot) {
		rows := todo.Render(snap, s.roster)
		select {
		case updates <- rows:
			return
		default:
		}
		// Drop the stale pending update in favour of this one.
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- rows:
		default:
		}
	})
	if err != nil {
		s.storeError(c, err)
		return
	}
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Stream(func(w io.Writer) bool {
		select {
		case rows := <-updates:
			c.SSEvent(EventTasks, rows)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
