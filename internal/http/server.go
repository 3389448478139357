// Package http provides the primus HTTP API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/primus/internal/agents"
	"github.com/fyrsmithlabs/primus/internal/extraction"
	"github.com/fyrsmithlabs/primus/internal/logging"
	"github.com/fyrsmithlabs/primus/internal/secrets"
	"github.com/fyrsmithlabs/primus/internal/tasks"
)

const (
	maxBodySize = "1M"
	maxTargets  = 32
)

// Server provides HTTP endpoints for primus.
type Server struct {
	echo      *echo.Echo
	scanner   *tasks.Scanner
	extractor *extraction.TaskExtractor
	workflows extraction.WorkflowAnalyzer
	analyzer  *agents.TaskAnalyzer
	scrubber  secrets.Scrubber
	metrics   *Metrics
	logger    *logging.Logger
	config    *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// Deps are the components the server exposes. Analyzer is optional; without
// it /api/v1/analyze answers 503.
type Deps struct {
	Scanner   *tasks.Scanner
	Extractor *extraction.TaskExtractor
	Analyzer  *agents.TaskAnalyzer
	Scrubber  secrets.Scrubber
}

// NewServer creates a new HTTP server.
func NewServer(deps Deps, logger *logging.Logger, cfg *Config) (*Server, error) {
	if deps.Scanner == nil {
		return nil, fmt.Errorf("scanner cannot be nil")
	}
	if deps.Extractor == nil {
		return nil, fmt.Errorf("extractor cannot be nil")
	}
	if deps.Scrubber == nil {
		return nil, fmt.Errorf("scrubber cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "127.0.0.1",
			Port: 8765,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		scanner:   deps.Scanner,
		extractor: deps.Extractor,
		analyzer:  deps.Analyzer,
		scrubber:  deps.Scrubber,
		metrics:   NewMetrics(),
		logger:    logger.Named("http"),
		config:    cfg,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(maxBodySize))
	e.Use(s.requestContext)
	e.Use(s.requestLogger)
	e.Use(s.metrics.Middleware())

	s.registerRoutes()
	return s, nil
}

// requestContext carries the request ID into the request context so every
// log line written while serving it can be correlated.
func (s *Server) requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Response().Header().Get(echo.HeaderXRequestID)
		ctx := logging.WithRequestID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		s.logger.Info(c.Request().Context(), "http request",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(start)),
		)
		return err
	}
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/scan", s.handleScan)
	v1.POST("/extract", s.handleExtract)
	v1.POST("/recommend", s.handleRecommend)
	v1.POST("/analyze", s.handleAnalyze)
	v1.POST("/scrub", s.handleScrub)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// ScanRequest is the request body for POST /api/v1/scan.
type ScanRequest struct {
	Targets []string `json:"targets"`
}

// ScanResponse is the response body for POST /api/v1/scan.
type ScanResponse struct {
	RunID    string          `json:"run_id"`
	Tasks    []string        `json:"tasks"`
	Findings []tasks.Finding `json:"findings"`
	Blocks   int             `json:"blocks"`
}

func (s *Server) handleScan(c echo.Context) error {
	var req ScanRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid scan request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	targets := make([]string, 0, len(req.Targets))
	for _, t := range req.Targets {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "targets field is required")
	}
	if len(targets) > maxTargets {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("at most %d targets per request", maxTargets))
	}

	result := s.scanner.Scan(c.Request().Context(), targets...)
	s.metrics.ObserveScan(result.Blocks, len(result.Tasks))

	return c.JSON(http.StatusOK, ScanResponse{
		RunID:    result.RunID,
		Tasks:    result.Tasks,
		Findings: result.Findings,
		Blocks:   result.Blocks,
	})
}

// TextRequest is the request body for endpoints that take free text.
type TextRequest struct {
	Text    string `json:"text"`
	Content string `json:"content"`
}

func (r TextRequest) body() string {
	if r.Text != "" {
		return r.Text
	}
	return r.Content
}

// ExtractResponse is the response body for POST /api/v1/extract.
type ExtractResponse struct {
	Tasks []string `json:"tasks"`
}

func (s *Server) handleExtract(c echo.Context) error {
	text, err := s.bindText(c)
	if err != nil {
		return err
	}
	found := s.extractor.Extract(text).Sorted()
	s.metrics.ObserveExtract(len(found))
	return c.JSON(http.StatusOK, ExtractResponse{Tasks: found})
}

// RecommendResponse is the response body for POST /api/v1/recommend.
type RecommendResponse struct {
	Recommendations []string `json:"recommendations"`
}

func (s *Server) handleRecommend(c echo.Context) error {
	text, err := s.bindText(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, RecommendResponse{Recommendations: s.workflows.Recommend(text)})
}

// AnalyzeRequest is the request body for POST /api/v1/analyze.
type AnalyzeRequest struct {
	Task string `json:"task"`
}

func (s *Server) handleAnalyze(c echo.Context) error {
	if s.analyzer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no LLM provider configured")
	}
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Task) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task field is required")
	}

	report, err := s.analyzer.Analyze(c.Request().Context(), req.Task)
	if err != nil {
		s.logger.Error(c.Request().Context(), "analysis failed", zap.Error(err))
		var apiErr *agents.APIError
		if errors.As(err, &apiErr) {
			return echo.NewHTTPError(http.StatusBadGateway, apiErr.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, "analysis failed")
	}
	return c.JSON(http.StatusOK, report)
}

// ScrubResponse is the response body for POST /api/v1/scrub.
type ScrubResponse struct {
	Content       string `json:"content"`
	FindingsCount int    `json:"findings_count"`
	Summary       string `json:"summary"`
}

// handleScrub scrubs secrets from the provided content.
func (s *Server) handleScrub(c echo.Context) error {
	text, err := s.bindText(c)
	if err != nil {
		return err
	}
	result := s.scrubber.Scrub(text)
	s.logger.Debug(c.Request().Context(), "scrubbed content", zap.Int("findings", len(result.Findings)))
	return c.JSON(http.StatusOK, ScrubResponse{
		Content:       result.Scrubbed,
		FindingsCount: len(result.Findings),
		Summary:       result.Summary(),
	})
}

func (s *Server) bindText(c echo.Context) (string, error) {
	var req TextRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid request", zap.Error(err))
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	text := req.body()
	if text == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "text field is required")
	}
	return text, nil
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", s.Addr()))
	return s.echo.Start(s.Addr())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
