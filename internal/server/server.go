package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rezonia/nfse-reader/internal/extractor"
	"github.com/rezonia/nfse-reader/internal/inspect"
	"github.com/rezonia/nfse-reader/internal/logger"
	"github.com/rezonia/nfse-reader/internal/processor"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool

	// Batch defaults, overridable per request
	Concurrency int
	Partial     bool
}

// Server represents the HTTP API server
type Server struct {
	config    *Config
	router    *gin.Engine
	extractor *extractor.Extractor
	session   *processor.Session
	logger    *logger.Logger
}

// Option configures the server
type Option func(*Server)

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server
func NewServer(config *Config, opts ...Option) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: config,
		router: gin.New(),
		logger: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.extractor = extractor.New(extractor.WithLogger(s.logger))
	s.session = processor.NewSession(s.newRunner(nil, 0))

	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger(s.logger))

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/extract", s.handleExtract)
		v1.POST("/scan", s.handleScan)
		v1.POST("/decode", s.handleDecode)
		v1.POST("/info", s.handleInfo)

		// Shared batch session
		v1.POST("/batch", s.handleStartBatch)
		v1.GET("/batch", s.handleGetBatch)
	}
}

// Run starts the HTTP server and shuts it down when ctx is done
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("server listening", "address", s.config.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// Session returns the shared batch session
func (s *Server) Session() *processor.Session {
	return s.session
}

func (s *Server) newRunner(partial *bool, concurrency int) *processor.Runner {
	mode := processor.ModeAllOrNothing
	if (partial == nil && s.config.Partial) || (partial != nil && *partial) {
		mode = processor.ModePartial
	}
	if concurrency == 0 {
		concurrency = s.config.Concurrency
	}

	return processor.NewRunner(
		processor.WithParser(s.extractor),
		processor.WithMode(mode),
		processor.WithConcurrency(concurrency),
		processor.WithLogger(s.logger),
	)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleExtract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	result := s.newRunner(req.Partial, req.Concurrency).Run(c.Request.Context(), req.Paths)
	if result.State == processor.StateFailed {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: result.Message})
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{
		ID:       result.ID,
		Count:    len(result.Records),
		Records:  result.Records,
		Failures: result.Failures(),
	})
}

func (s *Server) handleScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	files, err := processor.ScanDir(req.Dir)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ScanResponse{
		Dir:   req.Dir,
		Count: len(files),
		Files: files,
	})
}

func (s *Server) handleDecode(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	resp, err := s.extractor.ParseContent(c.Request.Context(), "request body", body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, DecodeResponse{
		Root:    resp.Root,
		Count:   resp.Len(),
		Records: resp.Details(),
	})
}

func (s *Server) handleInfo(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	outline, err := inspect.Inspect(body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, InfoResponse{
		Size:    len(body),
		Outline: outline,
	})
}

func (s *Server) handleStartBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	snapshot, _ := s.session.Start(context.WithoutCancel(c.Request.Context()), req.Paths)
	c.JSON(http.StatusAccepted, snapshot)
}

func (s *Server) handleGetBatch(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Current())
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return nil, false
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return nil, false
	}
	return body, true
}

// requestLogger logs one line per request
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Infow("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
