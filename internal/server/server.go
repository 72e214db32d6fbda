// Package server exposes the deployment impact analysis over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
	"github.com/Tomas-vilte/MateImpact/internal/domain/ports"
	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
	"github.com/Tomas-vilte/MateImpact/internal/logger"
	"github.com/Tomas-vilte/MateImpact/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	noResultMessage = "No analysis result available"
	shutdownTimeout = 10 * time.Second
)

type (
	AnalyzeRequest struct {
		PRURL string `json:"pr_url"`
	}

	AnalyzeResponse struct {
		Result string `json:"result"`
	}

	ErrorResponse struct {
		Error string `json:"error"`
	}
)

type Server struct {
	analyzer ports.DeploymentImpactAnalyzer
	metrics  *metrics.Metrics
	addr     string
	engine   *gin.Engine
}

// New builds the router. Analyses run with publishing forced off.
func New(analyzer ports.DeploymentImpactAnalyzer, m *metrics.Metrics, addr string) *Server {
	s := &Server{
		analyzer: analyzer,
		metrics:  m,
		addr:     addr,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID())
	engine.POST("/api/analyze", s.handleAnalyze)
	engine.GET("/healthz", s.handleHealth)
	if m != nil {
		engine.GET("/metrics", gin.WrapH(m.Handler()))
	}
	s.engine = engine
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "deployment impact API listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	logger.Info(ctx, "shutting down deployment impact API")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.PRURL) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: apperrors.ErrNoPRURL.Message})
		return
	}

	ctx := logger.With(c.Request.Context(), "request_id", c.GetString(RequestIDHeader))
	publish := false
	outcome, err := s.analyzer.Analyze(ctx, req.PRURL, models.AnalyzeOptions{Publish: &publish})
	if err != nil {
		logger.Error(ctx, "deployment impact analysis failed", err, "pr_url", req.PRURL)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	result := outcome.Report
	if result == "" {
		result = noResultMessage
	}
	c.JSON(http.StatusOK, AnalyzeResponse{Result: result})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestID reuses the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
