// Package http provides the gin HTTP server and its middleware chain.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/iwac-chat/pkg/infra/middleware"
	"github.com/kart-io/iwac-chat/pkg/infra/server"
	"github.com/kart-io/iwac-chat/pkg/observability/metrics"
	httpopts "github.com/kart-io/iwac-chat/pkg/options/http"
	mwopts "github.com/kart-io/iwac-chat/pkg/options/middleware"
	apierrors "github.com/kart-io/iwac-chat/pkg/utils/errors"
	"github.com/kart-io/iwac-chat/pkg/utils/response"
)

// Server is the HTTP server implementation.
type Server struct {
	opts   *httpopts.Options
	mwOpts *mwopts.Options
	engine *gin.Engine

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	errCh    chan error
}

// NewServer creates a gin server with the middleware chain applied.
// HTTP metrics are registered in registry when it is not nil.
func NewServer(serverOpts *httpopts.Options, middlewareOpts *mwopts.Options, registry *metrics.Registry) *Server {
	if serverOpts == nil {
		serverOpts = httpopts.NewOptions()
	}
	if middlewareOpts == nil {
		middlewareOpts = mwopts.NewOptions()
	}
	_ = middlewareOpts.Complete()

	gin.SetMode(serverOpts.Mode)
	engine := gin.New()
	engine.ContextWithFallback = true

	s := &Server{
		opts:   serverOpts,
		mwOpts: middlewareOpts,
		engine: engine,
		errCh:  make(chan error, 1),
	}
	// 中间件必须在注册路由之前应用
	s.applyMiddleware(registry)

	engine.NoRoute(func(c *gin.Context) {
		response.Fail(c, apierrors.ErrRouteNotFound)
	})
	return s
}

func (s *Server) applyMiddleware(registry *metrics.Registry) {
	opts := s.mwOpts
	s.engine.Use(middleware.Recovery(*opts.Recovery, nil))
	s.engine.Use(middleware.RequestID(*opts.RequestID))
	s.engine.Use(middleware.Tracing(opts.Logger.SkipPaths...))
	s.engine.Use(middleware.Logger(*opts.Logger))
	if registry != nil {
		s.engine.Use(middleware.NewHTTPMetrics(*opts.Metrics, registry).Middleware())
	}
	if opts.CORS.Enabled {
		s.engine.Use(middleware.CORS(*opts.CORS))
	}
}

// Name returns the server name.
func (s *Server) Name() string {
	return "http[gin]"
}

// Engine returns the underlying gin.Engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr returns the bound address once started, or the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.opts.Addr
}

// Start binds the listen address and serves in the background.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}
	s.mu.Lock()
	s.server = srv
	s.listener = ln
	s.mu.Unlock()

	logger.Infow("HTTP server listening", "addr", ln.Addr().String())
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("HTTP server stopped unexpectedly", "error", err.Error())
			s.errCh <- err
		}
		close(s.errCh)
	}()
	return nil
}

// Stop stops the HTTP server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Err implements server.Failer.
func (s *Server) Err() <-chan error {
	return s.errCh
}

var (
	_ server.Runnable = (*Server)(nil)
	_ server.Failer   = (*Server)(nil)
)
