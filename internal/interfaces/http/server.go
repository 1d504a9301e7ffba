// Package http provides the HTTP adapter over the bill list presenter and
// the submission validator. It is a thin layer translating requests into
// core calls; no business rule lives here.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dcseguramedina/billed-server/internal/bills"
	"github.com/dcseguramedina/billed-server/internal/newbill"
	"github.com/dcseguramedina/billed-server/internal/repository"
	"github.com/dcseguramedina/billed-server/internal/session"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host          string
	Port          int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxUploadSize int64
}

// ValidatorFactory builds a fresh submission validator for one employee.
type ValidatorFactory func() *newbill.Validator

// SubmissionJournal exposes the local record of persisted submissions.
type SubmissionJournal interface {
	ListRecent(ctx context.Context, limit int) ([]repository.SubmissionEntry, error)
}

// Server is the HTTP server adapter
type Server struct {
	config           ServerConfig
	httpServer       *http.Server
	router           *gin.Engine
	presenter        *bills.Presenter
	validatorFactory ValidatorFactory
	session          session.Provider
	journal          SubmissionJournal
	logger           *zap.Logger

	mu         sync.Mutex
	validators map[string]*newbill.Validator
}

// NewServer creates a new HTTP server over the two core containers.
func NewServer(
	config ServerConfig,
	presenter *bills.Presenter,
	validatorFactory ValidatorFactory,
	sessionProvider session.Provider,
	journal SubmissionJournal,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:           config,
		router:           gin.New(),
		presenter:        presenter,
		validatorFactory: validatorFactory,
		session:          sessionProvider,
		journal:          journal,
		logger:           logger,
		validators:       make(map[string]*newbill.Validator),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/bills", s.handleListBills)
		api.GET("/bills/preview", s.handlePreviewAttachment)
		api.POST("/bills/file", s.handleChangeFile)
		api.POST("/bills", s.handleSubmit)
		if s.journal != nil {
			api.GET("/journal", s.handleListJournal)
		}
	}
}

// validatorFor returns the in-flight validator for one employee, creating it
// on first use. A validator that reached its terminal state is replaced.
func (s *Server) validatorFor(email string) *newbill.Validator {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.validators[email]
	if !ok || v.State().IsTerminal() {
		v = s.validatorFactory()
		s.validators[email] = v
	}
	return v
}

// Start starts the HTTP server and blocks until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
