package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/openwidget/rewriter/internal/cache"
	"github.com/openwidget/rewriter/internal/fetch"
	rewritehttp "github.com/openwidget/rewriter/internal/http"
	"github.com/openwidget/rewriter/internal/infrastructure/config"
	"github.com/openwidget/rewriter/internal/infrastructure/monitoring"
	"github.com/openwidget/rewriter/internal/logging"
	"github.com/openwidget/rewriter/internal/middleware"
	"github.com/openwidget/rewriter/internal/rewrite/uri"
	"github.com/openwidget/rewriter/internal/sandbox"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg    *config.Config
	log    *logging.Logger
	router *gin.Engine
	http   *http.Server
}

// New builds a server from configuration.
func New(cfg *config.Config, log *logging.Logger) (*Server, error) {
	resolver, err := uri.NewResolver(cfg.Rewrite.ProxyBase, cfg.Rewrite.ConcatBase)
	if err != nil {
		return nil, err
	}
	if cfg.Rewrite.ContainersFile != "" {
		if err := resolver.LoadOverrides(cfg.Rewrite.ContainersFile); err != nil {
			return nil, err
		}
		log.Info("loaded container overrides", zap.String("file", cfg.Rewrite.ContainersFile))
	}

	fetcher := fetch.New(fetch.Config{
		Timeout:      time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	}, log)

	metrics := monitoring.NewMetrics()
	provider := cache.NewMemoryProvider(cfg.Rewrite.CacheCapacity)
	sandboxRewriter := sandbox.NewRewriter(sandbox.NewSandboxer(), provider, log).
		WithObserver(metrics)
	handlers := rewritehttp.NewHandlers(resolver, fetcher, sandboxRewriter, metrics, log)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}
	router.Use(monitoring.Middleware(metrics))

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/api/rewrite", handlers.Rewrite)
	router.POST("/api/sandbox", handlers.Sandbox)
	router.GET("/concat", handlers.Concat)

	return &Server{
		cfg:    cfg,
		log:    log,
		router: router,
	}, nil
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("server listening", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
