package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mkrupp/socialsvc/internal/infra/logging"
)

// HTTPTransportConfig contains configuration parameters for HTTP servers.
type HTTPTransportConfig struct {
	// ServerAddr is the network address to listen on
	ServerAddr string `env:"SERVER_ADDR" default:":8080"`
	// ReadHeaderTimeout is the timeout for reading request headers
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" default:"5s"`

	ReadTimeout  time.Duration `env:"READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" default:"10s"`

	// ShutdownTimeout bounds how long in-flight requests may run after the
	// server context is cancelled
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`

	// RateLimit is the sustained number of requests per second allowed per
	// client; zero disables rate limiting
	RateLimit float64 `env:"RATE_LIMIT" default:"0"`
	RateBurst int     `env:"RATE_BURST" default:"20"`
	// RateMaxClients caps how many client buckets are kept in memory
	RateMaxClients int `env:"RATE_MAX_CLIENTS" default:"10000"`

	// TrustedProxies is a comma-separated list of proxy IPs or CIDRs whose
	// X-Forwarded-For header names the client; empty trusts no proxy
	TrustedProxies string `env:"TRUSTED_PROXIES" default:""`
}

// HTTPTransport defines the interface for HTTP handlers that can serve requests.
type HTTPTransport interface {
	http.Handler
}

// Wrap applies the standard middleware chain to handler. From the outside in:
// tracing, logging, panic recovery, rate limiting.
// Invalid trusted proxy entries are logged and skipped.
func Wrap(handler HTTPTransport, cfg HTTPTransportConfig, log logging.Logger) http.Handler {
	proxies, err := ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Warn("ignoring invalid trusted proxies", "error", err)
	}

	var wrapped http.Handler = handler

	if cfg.RateLimit > 0 {
		wrapped = NewRateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.RateMaxClients, log).Middleware(wrapped)
	}

	wrapped = RescueingMiddleware(wrapped, log)
	wrapped = LoggingMiddleware(wrapped, log)
	wrapped = TracingMiddleware(wrapped, proxies)

	return wrapped
}

// ListenAndServe starts an HTTP server with the given handler and configuration
// and blocks until ctx is cancelled or the server fails. On cancellation the
// server is shut down gracefully within cfg.ShutdownTimeout.
func ListenAndServe(ctx context.Context, handler HTTPTransport, cfg HTTPTransportConfig, log logging.Logger) error {
	if _, err := ParseTrustedProxies(cfg.TrustedProxies); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	// Requests keep running while the server drains.
	baseCtx := context.WithoutCancel(ctx)

	//nolint:exhaustruct
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           Wrap(handler, cfg, log),
		ErrorLog:          logging.GetLogLogger(log, logging.LevelError),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	sock, err := net.Listen("tcp", cfg.ServerAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	log.InfoContext(ctx, "listening", "addr", sock.Addr().String())

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- server.Serve(sock)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.InfoContext(ctx, "shutting down", "timeout", cfg.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(baseCtx, cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
