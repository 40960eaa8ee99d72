// Package httpserver exposes interview sessions over HTTP with fiber.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-voiceform/pkg/session"
)

const (
	// DefaultSweepInterval is how often idle sessions are swept while running.
	DefaultSweepInterval = time.Minute
	// DefaultStreamIdleTimeout closes voice streams that stay silent this long.
	DefaultStreamIdleTimeout = 2 * time.Minute
)

// ServerOption configures a Server.
type ServerOption func(*Server) error

// Server wires the fiber app to a session registry.
type Server struct {
	engine     *fiber.App
	log        *logrus.Logger
	validator  *validator.Validate
	registry   *session.Registry
	gatherer   prometheus.Gatherer
	limiter    *RateLimiter
	errHandler *ErrorHandler
	sweepEvery time.Duration
	streamIdle time.Duration
}

// NewServer applies options and registers routes. A logger and a registry
// are required; the fiber app and validator have defaults.
func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{
		sweepEvery: DefaultSweepInterval,
		streamIdle: DefaultStreamIdleTimeout,
	}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.log == nil {
		return nil, errors.New("logger is required")
	}
	if server.registry == nil {
		return nil, errors.New("session registry is required")
	}
	if server.engine == nil {
		server.engine = NewFiber()
	}
	if server.validator == nil {
		server.validator = validator.New(validator.WithRequiredStructEnabled())
	}
	server.errHandler = NewErrorHandler(server.log)

	server.registerHandlers()
	return server, nil
}

// WithFiber sets the fiber app.
func WithFiber(app *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = app
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

// WithValidator sets the request validator.
func WithValidator(v *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = v
		return nil
	}
}

// WithRegistry sets the session registry.
func WithRegistry(registry *session.Registry) ServerOption {
	return func(s *Server) error {
		s.registry = registry
		return nil
	}
}

// WithGatherer exposes g on /metrics.
func WithGatherer(g prometheus.Gatherer) ServerOption {
	return func(s *Server) error {
		s.gatherer = g
		return nil
	}
}

// WithRateLimit enables the per-IP limiter.
func WithRateLimit(perSecond float64, burst int) ServerOption {
	return func(s *Server) error {
		if perSecond <= 0 || burst <= 0 {
			return fmt.Errorf("invalid rate limit %v/%d", perSecond, burst)
		}
		if s.log == nil {
			return errors.New("logger must be initialized before the rate limiter")
		}
		s.limiter = NewRateLimiter(rate.Limit(perSecond), burst, s.log)
		return nil
	}
}

// WithSweepInterval sets how often Run sweeps idle sessions.
func WithSweepInterval(d time.Duration) ServerOption {
	return func(s *Server) error {
		if d > 0 {
			s.sweepEvery = d
		}
		return nil
	}
}

// WithStreamIdleTimeout sets how long a voice stream may stay silent.
func WithStreamIdleTimeout(d time.Duration) ServerOption {
	return func(s *Server) error {
		if d <= 0 {
			return fmt.Errorf("invalid stream idle timeout %v", d)
		}
		s.streamIdle = d
		return nil
	}
}

// App returns the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.engine
}

func (s *Server) registerHandlers() {
	s.engine.Use(RequestID())
	s.engine.Use(Logging(s.log))
	if s.limiter != nil {
		s.engine.Use(s.limiter.Handler())
	}

	s.setupHealthCheck()
	if s.gatherer != nil {
		s.engine.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	router := s.engine.Group("/api/v1")
	newSessionHandler(s).Start(router)
	newStreamHandler(s).Start(router)
	newSchemaHandler(s).Start(router)
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":  "Server is Healthy!",
			"sessions": s.registry.Len(),
		})
	})
}

// Run listens on addr until ctx is cancelled, sweeping idle sessions in the
// background.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.sweep(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.engine.Listen(addr)
	}()
	s.log.WithField("addr", addr).Info("HTTP server started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.engine.ShutdownWithContext(shutdownCtx)
	}
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.registry.Sweep(now); n > 0 {
				s.log.WithField("removed", n).Info("Swept idle sessions")
			}
		}
	}
}
