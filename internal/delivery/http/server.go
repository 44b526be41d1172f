// Package http serves the food delivery JSON API over echo.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/egannguyen/go-food-delivery/internal/metrics"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	// LoginRate is the sustained number of login attempts per second allowed
	// from one client IP. Zero disables the limiter.
	LoginRate  float64
	LoginBurst int
}

// Server wires the API handler into an echo instance with the shared middleware.
type Server struct {
	echo    *echo.Echo
	logger  *zap.Logger
	metrics *metrics.Metrics
	config  *Config
}

// NewServer creates the HTTP server and registers h's routes, /health and /metrics.
func NewServer(h *Handler, m *metrics.Metrics, logger *zap.Logger, cfg *Config) (*Server, error) {
	if h == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{Host: "0.0.0.0", Port: 5050}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	s := &Server{
		echo:    e,
		logger:  logger,
		metrics: m,
		config:  cfg,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(s.observe)

	e.GET("/health", handleHealth)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
	h.RegisterRoutes(e, s.loginLimiter())

	return s, nil
}

// observe logs and measures every request. Errors are rendered here so the
// logged status is the one the client received.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}
		duration := time.Since(start)

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().Status

		s.metrics.ObserveHTTP(c.Request().Method, route, status, duration)
		s.logger.Info("http request",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		)
		return nil
	}
}

func (s *Server) loginLimiter() echo.MiddlewareFunc {
	if s.config.LoginRate <= 0 {
		return nil
	}
	burst := s.config.LoginBurst
	if burst < 1 {
		burst = 1
	}

	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(s.config.LoginRate),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "cannot identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.logger.Warn("login rate limited", zap.String("client_ip", identifier))
			return echo.NewHTTPError(http.StatusTooManyRequests, msgTooManyRequests)
		},
	})
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// ServeHTTP lets tests drive the server without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
