// Package server exposes the reasoning service over HTTP.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/njchilds90/geosymbol/internal/logging"
	"github.com/njchilds90/geosymbol/internal/service"
)

// Config configures the HTTP server.
type Config struct {
	Addr string
	// ServiceName labels the server spans.
	ServiceName string
	// Rate is the steady requests-per-second allowed per client IP. Zero
	// disables rate limiting.
	Rate  int
	Burst int
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ServiceName:     "geosymbol",
		Rate:            20,
		Burst:           40,
		MaxBodyBytes:    1 << 20,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

type Server struct {
	cfg     Config
	svc     *service.Service
	logger  *bolt.Logger
	limiter ratelimit.RateLimiter
	router  *gin.Engine
}

// New builds the router. A nil logger falls back to the default logger.
func New(cfg Config, svc *service.Service, logger *bolt.Logger) *Server {
	if logger == nil {
		logger = logging.Get()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "geosymbol"
	}
	s := &Server{cfg: cfg, svc: svc, logger: logger}
	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = cfg.Rate
		}
		s.limiter = ratelimit.New(&ratelimit.Config{
			Rate:     cfg.Rate,
			Burst:    burst,
			FailOpen: true,
		})
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(otelgin.Middleware(s.cfg.ServiceName))
	r.Use(s.accessLog())

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/schema", s.handleSchema)

	api := r.Group("/")
	api.Use(s.rateLimit(), bodyLimit(s.cfg.MaxBodyBytes))
	api.POST("/tool", s.handleTool)

	v1 := api.Group("/v1")
	v1.POST("/solve", s.handleSolve)
	v1.GET("/rules", s.handleRules)
	v1.GET("/runs", s.handleListRuns)
	v1.GET("/runs/:id", s.handleGetRun)
	v1.DELETE("/runs/:id", s.handleDeleteRun)
	return r
}

// Handler returns the router for use with httptest or a custom server.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.cfg.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.NewEvent(s.logger.Info()).
			Add(logging.Component("server")).
			Add(logging.Str("addr", ln.Addr().String())).
			Msg("listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logging.NewEvent(s.logger.Info()).Add(logging.Component("server")).Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve")
	}
	return nil
}
