package web

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sharedtodo/internal/pdfgen"
	"sharedtodo/internal/store"
	"sharedtodo/internal/todo"
)

const maxTextSize = 64 << 10 // 64KB

type createRequest struct {
	Text     string `json:"text"`
	Deadline string `json:"deadline"`
}

type ackRequest struct {
	As     string `json:"as"`
	Friend string `json:"friend"`
}

// Web handlers

func (s *Server) handleIndex(c *gin.Context) {
	snap, err := store.Fetch(c.Request.Context(), s.store)
	if err != nil {
		s.log.Warn("fetch tasks", "err", err)
		c.String(http.StatusBadGateway, "task store unavailable")
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"rows":        todo.Render(snap, s.roster),
		"friends":     s.roster.Friends(),
		"faces":       pdfgen.Faces,
		"defaultFace": pdfgen.DefaultFace.Key,
		"defaultSize": pdfgen.DefaultSize,
		"preview":     pdfgen.PreviewPlaceholder,
	})
}

func (s *Server) handlePDF(c *gin.Context) {
	text := c.PostForm("text")
	if len(text) > maxTextSize {
		c.String(http.StatusRequestEntityTooLarge, "text exceeds maximum size of 64KB")
		return
	}

	req := pdfgen.Request{
		Text:  text,
		Font:  c.PostForm("font"),
		Size:  pdfgen.ParseSize(c.PostForm("size")),
		Color: c.PostForm("color"),
		Align: c.PostForm("align"),
	}

	var buf bytes.Buffer
	if err := pdfgen.Generate(&buf, req); err != nil {
		s.log.Warn("generate pdf", "err", err)
		c.String(http.StatusInternalServerError, "could not generate pdf")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+pdfgen.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// API handlers

func (s *Server) handleAPITasks(c *gin.Context) {
	snap, err := store.Fetch(c.Request.Context(), s.store)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo.Render(snap, s.roster))
}

func (s *Server) handleAPIRoster(c *gin.Context) {
	c.JSON(http.StatusOK, s.roster.Friends())
}

func (s *Server) handleAPIFonts(c *gin.Context) {
	c.JSON(http.StatusOK, pdfgen.Faces)
}

func (s *Server) handleAPICreate(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Text) > maxTextSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text exceeds maximum size of 64KB"})
		return
	}

	key, err := s.mutator.Create(c.Request.Context(), req.Text, req.Deadline)
	if errors.Is(err, todo.ErrEmptyText) {
		// Empty input is ignored, as the page does.
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"key": key})
}

func (s *Server) handleAPIDelete(c *gin.Context) {
	key := c.Param("key")
	confirmed := c.Query("confirm") == "true"

	deleted, err := s.mutator.Delete(c.Request.Context(), key, todo.Confirmed(confirmed))
	if err != nil {
		s.storeError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusConflict, gin.H{"error": "delete not confirmed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAPIAck(c *gin.Context) {
	var req ackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := s.mutator.Acknowledge(c.Request.Context(), todo.Acting(req.As), c.Param("key"), req.Friend)
	var notAuthorized *todo.NotAuthorizedError
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.As(err, &notAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": notAuthorized.Error()})
	case errors.Is(err, todo.ErrUnknownFriend):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.storeError(c, err)
	}
}

// storeError maps store failures: missing keys are 404, anything else 502.
func (s *Server) storeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	s.log.Warn("task store", "path", c.Request.URL.Path, "err", err)
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
