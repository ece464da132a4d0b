package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// writeTimeoutSlack leaves room for the response after a handler hits
// its request timeout.
const writeTimeoutSlack = 5 * time.Second

// Server wraps http.Server with graceful shutdown.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	onShutdown      []func(context.Context) error
}

// NewServer creates a server on port. requestTimeout bounds handler time;
// zero uses 30s.
func NewServer(handler http.Handler, port string, requestTimeout time.Duration) *Server {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      requestTimeout + writeTimeoutSlack,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		shutdownTimeout: 10 * time.Second,
	}
}

// OnShutdown registers fn to run after the listener has drained, in
// registration order.
func (s *Server) OnShutdown(fn func(context.Context) error) {
	s.onShutdown = append(s.onShutdown, fn)
}

// Run serves until ctx is done or SIGINT/SIGTERM arrives, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.httpServer.Addr).Msg("Server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutdown requested, draining connections")
	}

	return s.Shutdown()
}

// Shutdown stops the listener and runs the shutdown hooks. Hook errors are
// logged; the first one is returned when the listener closed cleanly.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	for _, fn := range s.onShutdown {
		if hookErr := fn(ctx); hookErr != nil {
			log.Error().Err(hookErr).Msg("Shutdown hook failed")
			if err == nil {
				err = hookErr
			}
		}
	}

	if err == nil {
		log.Info().Msg("Server stopped gracefully")
	}
	return err
}
