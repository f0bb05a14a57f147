// Package web serves the shared page: the to-do list kept live over
// server-sent events, and the text-to-PDF form.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sharedtodo/internal/config"
	"sharedtodo/internal/roster"
	"sharedtodo/internal/store"
	"sharedtodo/internal/todo"
)

//go:embed templates/*.html
var templatesFS embed.FS

const shutdownTimeout = 5 * time.Second

// Server is the sharedtodo web server
type Server struct {
	store   store.Store
	mutator *todo.Mutator
	roster  roster.Roster
	log     *slog.Logger
	router  *gin.Engine
}

// NewServer creates a new web server over st.
func NewServer(st store.Store, cfg *config.Config) *Server {
	if !cfg.Debug && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	log := cfg.Logger
	if log == nil {
		log = config.NewLogger(io.Discard, false)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	s := &Server{
		store:   st,
		mutator: todo.NewMutator(st, roster.Default, todo.WithLogger(log)),
		roster:  roster.Default,
		log:     log,
		router:  router,
	}

	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	// Web routes
	router.GET("/", s.handleIndex)
	router.GET("/events", s.handleEvents)
	router.POST("/pdf", s.handlePDF)

	// API routes
	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleAPITasks)
		api.POST("/tasks", s.handleAPICreate)
		api.DELETE("/tasks/:key", s.handleAPIDelete)
		api.POST("/tasks/:key/ack", s.handleAPIAck)
		api.GET("/roster", s.handleAPIRoster)
		api.GET("/fonts", s.handleAPIFonts)
	}

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs each request at debug level.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
