// Package api serves a list session and article details over HTTP.
package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pevans/sfnews/listing"
	"github.com/pevans/sfnews/outcome"
	"github.com/pevans/sfnews/pagination"
	"github.com/pevans/sfnews/repository"
)

// Articles is the repository surface the server needs.
type Articles interface {
	repository.Articles
	PaginationRow(ctx context.Context) (*pagination.Row, error)
}

// Server represents the HTTP API server for browsing articles.
type Server struct {
	session *listing.Session
	repo    Articles
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics serves h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new API server over session and repo.
func NewServer(session *listing.Session, repo Articles, opts ...Option) *Server {
	s := &Server{
		session: session,
		repo:    repo,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetupRouter configures the Gin router with all article API routes.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(config))

	api := router.Group("/api/v1")
	api.GET("/articles", s.HandleGetArticles)
	api.POST("/articles/load", s.HandleLoad)
	api.POST("/articles/more", s.HandleLoadMore)
	api.POST("/articles/retry", s.HandleRetry)
	api.PUT("/articles/search", s.HandleSearch)
	api.GET("/articles/:id", s.HandleGetArticle)
	api.GET("/pagination", s.HandleGetPagination)
	api.DELETE("/pagination", s.HandleResetPagination)

	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics))
	}

	return router
}

// Envelope is the JSON rendering of an outcome.
type Envelope struct {
	Status    string         `json:"status"`
	Data      any            `json:"data,omitempty"`
	Error     *outcome.Error `json:"error,omitempty"`
	Appending bool           `json:"appending"`
	Query     string         `json:"query"`
	SessionID string         `json:"session_id,omitempty"`
}

// LoadRequest represents the request for POST /api/v1/articles/load.
type LoadRequest struct {
	Query       *string `json:"query,omitempty"`
	Reload      bool    `json:"reload,omitempty"`
	ResetOffset bool    `json:"reset_offset,omitempty"`
}

// SearchRequest represents the request for PUT /api/v1/articles/search.
type SearchRequest struct {
	Text *string `json:"text" binding:"required"`
}

func envelope[T any](o outcome.Outcome[T]) Envelope {
	return outcome.Match(o,
		func(v T) Envelope {
			return Envelope{Status: "success", Data: v}
		},
		func(err *outcome.Error) Envelope {
			return Envelope{Status: "error", Error: err}
		},
		func(partial *T) Envelope {
			env := Envelope{Status: "loading"}
			if partial != nil {
				env.Data = *partial
			}
			return env
		},
	)
}

func snapshotEnvelope(snap listing.Snapshot) Envelope {
	env := envelope(snap.Outcome())

	// Errors keep whatever was already loaded
	if snap.Phase == listing.PhaseError {
		env.Data = snap.Items
	}
	env.Appending = snap.Appending
	env.Query = snap.Query
	env.SessionID = snap.SessionID
	return env
}

// errorResponse creates a standardized error response.
func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// accepted reports the outcome of an intent sent to the session.
func (s *Server) accepted(c *gin.Context, err error) {
	if errors.Is(err, listing.ErrClosed) {
		c.JSON(http.StatusServiceUnavailable, errorResponse("unavailable", err.Error()))
		return
	}
	if err != nil {
		s.logger.Error("intent failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to process request"))
		return
	}
	c.JSON(http.StatusAccepted, snapshotEnvelope(s.session.Snapshot()))
}

// HandleGetArticles handles GET /api/v1/articles.
func (s *Server) HandleGetArticles(c *gin.Context) {
	c.JSON(http.StatusOK, snapshotEnvelope(s.session.Snapshot()))
}

// HandleLoad handles POST /api/v1/articles/load. The body is optional.
func (s *Server) HandleLoad(c *gin.Context) {
	var req LoadRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}

	s.accepted(c, s.session.Load(listing.LoadOptions{
		Query:       req.Query,
		Reload:      req.Reload,
		ResetOffset: req.ResetOffset,
	}))
}

// HandleLoadMore handles POST /api/v1/articles/more.
func (s *Server) HandleLoadMore(c *gin.Context) {
	s.accepted(c, s.session.LoadMore())
}

// HandleRetry handles POST /api/v1/articles/retry.
func (s *Server) HandleRetry(c *gin.Context) {
	s.accepted(c, s.session.Retry())
}

// HandleSearch handles PUT /api/v1/articles/search.
func (s *Server) HandleSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}

	s.accepted(c, s.session.SearchTextChanged(*req.Text))
}

// HandleGetArticle handles GET /api/v1/articles/{id}.
func (s *Server) HandleGetArticle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", "Invalid article ID"))
		return
	}

	res := s.repo.ArticleByID(c.Request.Context(), id)
	status := http.StatusOK
	if outcome.ErrorOf(res) != nil {
		status = http.StatusBadGateway
	}
	c.JSON(status, envelope(res))
}

// HandleGetPagination handles GET /api/v1/pagination.
func (s *Server) HandleGetPagination(c *gin.Context) {
	row, err := s.repo.PaginationRow(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to read pagination", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to read pagination"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"pagination": row})
}

// HandleResetPagination handles DELETE /api/v1/pagination.
func (s *Server) HandleResetPagination(c *gin.Context) {
	err := s.session.ResetOffset(c.Request.Context())
	if errors.Is(err, listing.ErrClosed) {
		c.JSON(http.StatusServiceUnavailable, errorResponse("unavailable", err.Error()))
		return
	}
	if err != nil {
		s.logger.Error("failed to reset pagination", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to reset pagination"))
		return
	}

	c.Status(http.StatusNoContent)
}
