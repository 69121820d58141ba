// Package httpserver exposes the log store over HTTP.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Aman-CERP/applogs/internal/errors"
	"github.com/Aman-CERP/applogs/internal/logging"
	"github.com/Aman-CERP/applogs/internal/logstore"
)

// LogStore is the narrow store contract required by the HTTP API.
type LogStore interface {
	Append(o logstore.Origin, line string)
	List() (logstore.Listing, error)
	Read(o logstore.Origin, name string) (string, error)
	Tail(o logstore.Origin, name string, n int) (logstore.TailResult, error)
}

// Server serves the log API.
type Server struct {
	addr       string
	store      LogStore
	logger     *logging.Logger
	corsOrigin string
	now        func() time.Time

	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// Option customises a Server.
type Option func(*Server)

// WithCORSOrigin allows browser requests from origin, with credentials.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.corsOrigin = origin }
}

// WithLogger sets the logger used for request logging. Without one, requests
// are not logged.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, store LogStore, opts ...Option) *Server {
	if addr == "" {
		addr = "127.0.0.1:5000"
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		addr:   addr,
		store:  store,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the gin engine with every route and middleware.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	// Match on the raw path so an encoded "/" in :filename reaches the
	// store's containment check instead of missing the route.
	r.UseRawPath = true
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(s.cors())

	r.GET("/health", s.handleHealth)

	logs := r.Group("/logs")
	logs.POST("/client", s.handleClient)
	logs.GET("/list", s.handleList)
	logs.GET("/read/:type/:filename", s.handleRead)
	logs.GET("/tail/:type/:filename", s.handleTail)

	return r
}

// Start binds the listen address. Requests are answered once Serve runs.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeInternal, "failed to listen", err).WithDetail("addr", s.addr)
	}
	s.listener = listener
	s.startTime = s.now()
	return nil
}

// Serve answers requests on the listener bound by Start until Stop. It
// returns nil after Stop and the failure otherwise.
func (s *Server) Serve() error {
	if s.server == nil || s.listener == nil {
		return apperrors.New(apperrors.ErrCodeInternal, "serve called before start", nil)
	}
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return apperrors.New(apperrors.ErrCodeInternal, "http server failed", err).WithDetail("addr", s.Addr())
	}
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger reports each request through Logger.HTTP, which itself
// decides whether request logging is on.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if s.logger != nil {
			s.logger.HTTP(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
		}
	}
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.corsOrigin == "" {
			c.Next()
			return
		}
		if origin := c.GetHeader("Origin"); origin == s.corsOrigin {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
