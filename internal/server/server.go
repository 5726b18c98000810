// Package server owns the HTTP listener lifecycle: serve until the context
// is cancelled, then drain in-flight requests and run shutdown hooks.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Hook releases a resource during shutdown.
type Hook func(ctx context.Context) error

// Options tunes the server.
type Options struct {
	ShutdownTimeout time.Duration
	// OnShutdown runs in order after the HTTP server has drained.
	OnShutdown []Hook
}

func (o Options) timeout() time.Duration {
	if o.ShutdownTimeout <= 0 {
		return 15 * time.Second
	}
	return o.ShutdownTimeout
}

// Run listens on addr and serves handler until ctx is done.
func Run(ctx context.Context, addr string, handler http.Handler, opts Options) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", addr, err)
	}
	return Serve(ctx, lis, handler, opts)
}

// Serve serves handler on lis until ctx is done or the server fails.
func Serve(ctx context.Context, lis net.Listener, handler http.Handler, opts Options) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", lis.Addr().String())
		serveErr <- srv.Serve(lis)
	}()

	var errs []error
	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, fmt.Errorf("server: serve: %w", err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opts.timeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server: shutdown: %w", err))
	}
	for _, hook := range opts.OnShutdown {
		if err := hook(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	logger.Info("server stopped cleanly")
	return nil
}
