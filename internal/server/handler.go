// Package server exposes the quiz workflow over HTTP. The surface is a
// thin mapping onto the pipeline; errors are classified into a small set of
// operator-facing categories without leaking internal diagnostic detail.
package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wikiquiz/internal/model"
	"wikiquiz/internal/pipeline"
)

// Handler holds the request handlers for the quiz API.
type Handler struct {
	pipeline *pipeline.Pipeline
}

// NewHandler creates a handler over the given pipeline.
func NewHandler(p *pipeline.Pipeline) *Handler {
	return &Handler{pipeline: p}
}

// Router builds the gin engine with all routes registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/", h.handleRoot)

	api := r.Group("/api")
	api.POST("/generate", h.handleGenerate)
	api.GET("/history", h.handleHistory)
	api.GET("/quiz/:id", h.handleGetQuiz)
	api.GET("/preview", h.handlePreview)
	api.DELETE("/quiz/:id", h.handleDeleteQuiz)

	return r
}

func (h *Handler) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "WikiQuiz API",
		"status":  "running",
		"endpoints": gin.H{
			"generate": "/api/generate",
			"history":  "/api/history",
			"quiz":     "/api/quiz/:id",
			"preview":  "/api/preview",
		},
	})
}

type generateRequest struct {
	URL string `json:"url" binding:"required"`
}

func (h *Handler) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Request body must contain a url field"})
		return
	}

	record, err := h.pipeline.GenerateFromURL(c.Request.Context(), req.URL)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *Handler) handleHistory(c *gin.Context) {
	summaries, err := h.pipeline.History(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *Handler) handleGetQuiz(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	record, err := h.pipeline.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Quiz not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *Handler) handlePreview(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "URL parameter is required"})
		return
	}

	title, err := h.pipeline.Preview(c.Request.Context(), url)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"title": title, "url": url})
}

func (h *Handler) handleDeleteQuiz(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	title, deleted, err := h.pipeline.Delete(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Quiz not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quiz '" + title + "' deleted successfully"})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid quiz ID. Must be a positive integer."})
		return 0, false
	}
	return id, true
}

// writeError classifies an error kind into a status code and a generic
// client message. The underlying detail goes to the server log only.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidSource):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid Wikipedia URL. Must be a Wikipedia article URL (e.g., https://en.wikipedia.org/wiki/Article_Name)"})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Wikipedia article not found"})
	case errors.Is(err, model.ErrAccessDenied):
		c.JSON(http.StatusBadGateway, gin.H{"detail": "Access to Wikipedia was denied. Please try again later."})
	case errors.Is(err, model.ErrTransient):
		c.JSON(http.StatusGatewayTimeout, gin.H{"detail": "Upstream service took too long to respond. Please try again."})
	case errors.Is(err, model.ErrExtraction):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Could not extract article content. The page might be empty or malformed."})
	case errors.Is(err, model.ErrParse), errors.Is(err, model.ErrValidation):
		c.JSON(http.StatusBadGateway, gin.H{"detail": "AI failed to generate a valid quiz. Please try again."})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "An unexpected server error occurred."})
	}
}
