// Package server exposes the documentation pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codegenius/internal/pipeline"
	"codegenius/internal/repo"
	"codegenius/internal/storage"
)

// Generator runs one documentation pipeline pass.
type Generator interface {
	Generate(ctx context.Context, repoURL string) (pipeline.Result, error)
}

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	generator Generator
	store     storage.Store
}

// New creates a Server around a generator and a store.
func New(generator Generator, store storage.Store) *Server {
	return &Server{generator: generator, store: store}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/generate", s.handleGenerate)
	r.GET("/health", s.handleHealth)
	r.GET("/download/:repo", s.handleDownload)
	r.GET("/download-content/:repo", s.handleDownloadContent)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

// GenerateRequest is the POST /generate body.
type GenerateRequest struct {
	RepoURL string `json:"repoUrl" binding:"required"`
}

// GenerateResponse is the POST /generate success envelope.
type GenerateResponse struct {
	Status      string           `json:"status"`
	RunID       string           `json:"runId"`
	Repo        string           `json:"repo"`
	OutputPath  string           `json:"outputMarkdown,omitempty"`
	SymbolCount int              `json:"symbolCount"`
	Result      *pipeline.Result `json:"result"`
}

// ErrorResponse is the structured error envelope.
type ErrorResponse struct {
	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		generateRequestsTotal.WithLabelValues("invalid_url").Inc()
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:    "error",
			ErrorCode: "invalid_url",
			Message:   fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}

	result, err := s.generator.Generate(c.Request.Context(), req.RepoURL)
	if err != nil {
		code, status := classifyError(err)
		generateRequestsTotal.WithLabelValues(code).Inc()
		slog.Error("generation failed", "url", req.RepoURL, "code", code, "error", err)
		c.JSON(status, ErrorResponse{Status: "error", ErrorCode: code, Message: err.Error()})
		return
	}

	generateRequestsTotal.WithLabelValues("ok").Inc()
	generateDuration.Observe(result.Duration.Seconds())
	graphNodes.Set(float64(len(result.Snapshot.Nodes)))
	graphEdges.Set(float64(len(result.Snapshot.Edges)))

	c.JSON(http.StatusOK, GenerateResponse{
		Status:      "ok",
		RunID:       result.RunID,
		Repo:        result.Repo,
		OutputPath:  result.DocsPath,
		SymbolCount: len(result.Snapshot.Nodes),
		Result:      &result,
	})
}

func classifyError(err error) (code string, status int) {
	switch {
	case errors.Is(err, repo.ErrInvalidURL):
		return "invalid_url", http.StatusBadRequest
	case errors.Is(err, repo.ErrNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, repo.ErrAuthRequired), errors.Is(err, repo.ErrCloneFailed):
		return "clone_failed", http.StatusBadGateway
	default:
		return "unhandled_exception", http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleDownload(c *gin.Context) {
	name, run, ok := s.lookupRun(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_documentation.md", name))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(run.Markdown))
}

func (s *Server) handleDownloadContent(c *gin.Context) {
	_, run, ok := s.lookupRun(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(run.Markdown))
}

func (s *Server) lookupRun(c *gin.Context) (string, storage.Run, bool) {
	name := sanitizeRepoName(c.Param("repo"))
	run, err := s.store.LatestRun(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Status:    "error",
				ErrorCode: "not_found",
				Message:   fmt.Sprintf("documentation not found for repository %q, generate it first", name),
			})
			return name, storage.Run{}, false
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:    "error",
			ErrorCode: "unhandled_exception",
			Message:   err.Error(),
		})
		return name, storage.Run{}, false
	}
	return name, run, true
}

// sanitizeRepoName strips path traversal characters from a repo name.
func sanitizeRepoName(name string) string {
	replacer := strings.NewReplacer("..", "", "/", "", "\\", "")
	return replacer.Replace(name)
}
