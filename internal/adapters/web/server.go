// Package web serves the upload page and JSON API for translating files.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/devbush/subtranslate/internal/application"
	"github.com/devbush/subtranslate/internal/observability/logging"
	"github.com/devbush/subtranslate/internal/observability/metrics"
)

// DefaultMaxUpload bounds the request body of an upload
const DefaultMaxUpload = 1 << 30

// Processor runs the subtitle pipeline for one stored file
type Processor interface {
	Process(ctx context.Context, inputPath string, opts application.ProcessOptions) (*application.ProcessResult, error)
}

// Response is the standard API response structure
type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// Options configures the server
type Options struct {
	Addr           string
	OutputDir      string // where <id>.srt files are kept for download
	UploadDir      string // parent of per-request upload dirs, empty for os.TempDir
	TargetLanguage string
	SourceLanguage string
	Model          string
	FullText       application.FullTextMode
	MaxUploadBytes int64
	Metrics        *metrics.Metrics
}

// Server is the HTTP server for the upload UI
type Server struct {
	processor Processor
	opts      Options
	logger    zerolog.Logger
	engine    *gin.Engine
	server    *http.Server
}

// NewServer creates a server and registers its routes
func NewServer(processor Processor, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUpload
	}

	s := &Server{
		processor: processor,
		opts:      opts,
		logger:    logging.WithComponent("web"),
	}

	s.engine = gin.New()
	s.engine.MaxMultipartMemory = 32 << 20
	s.engine.Use(gin.Recovery())
	s.engine.Use(s.loggingMiddleware())

	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/translate", s.handleTranslate)
	api.GET("/subtitles/:id", s.handleSubtitle)

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	if err := os.MkdirAll(s.opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	s.server = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.opts.Addr).Str("output", s.opts.OutputDir).Msg("starting web UI")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info().Msg("shutting down web UI")
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) subtitlePath(id string) string {
	return filepath.Join(s.opts.OutputDir, id+".srt")
}
