// Package api exposes the route-generation pipeline over HTTP.
package api

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxConcurrent  int
	CORSOrigin     string
}

// DefaultConfig returns sensible defaults. Solver runs dominate request
// latency, so the write and request timeouts are generous.
func DefaultConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:           addr,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   150 * time.Second,
		RequestTimeout: 120 * time.Second,
		MaxConcurrent:  4,
		CORSOrigin:     "",
	}
}

// ipGate admits one in-flight request per client IP. A second request from
// the same address while the first is still solving is rejected, so a single
// client cannot queue up expensive solver runs.
type ipGate struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newIPGate() *ipGate {
	return &ipGate{active: make(map[string]struct{})}
}

func (g *ipGate) acquire(ip string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[ip]; busy {
		return false
	}
	g.active[ip] = struct{}{}
	return true
}

func (g *ipGate) release(ip string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, ip)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// NewServer creates an HTTP server with all routes and middleware.
func NewServer(cfg ServerConfig, handlers *Handlers, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()

	// Global concurrency limiter and per-IP single-flight gate.
	sem := make(chan struct{}, cfg.MaxConcurrent)
	gate := newIPGate()

	mux.HandleFunc("POST /api/v1/route", withMiddleware(handlers.HandleRoute, sem, gate, cfg, log))
	mux.HandleFunc("GET /api/v1/health", withMiddleware(handlers.HandleHealth, nil, nil, cfg, log))
	mux.HandleFunc("GET /api/v1/stats", withMiddleware(handlers.HandleStats, nil, nil, cfg, log))

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// ListenAndServe starts the server and blocks until shutdown signal.
func ListenAndServe(srv *http.Server, log *zap.Logger) error {
	// Graceful shutdown on SIGTERM/SIGINT.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// withMiddleware wraps a handler with security headers, CORS, rate limiting,
// recovery, a request deadline and access logging. A nil sem/gate disables
// limiting for the cheap read-only endpoints.
func withMiddleware(handler http.HandlerFunc, sem chan struct{}, gate *ipGate, cfg ServerConfig, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Security headers.
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")

		// CORS.
		if cfg.CORSOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigin)
		}

		// One route computation per client at a time.
		if gate != nil {
			ip := clientIP(r)
			if !gate.acquire(ip) {
				w.Header().Set("Retry-After", "5")
				http.Error(w, `{"error":"request_already_in_progress"}`, http.StatusTooManyRequests)
				return
			}
			defer gate.release(ip)
		}

		// Global concurrency limiter.
		if sem != nil {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			default:
				w.Header().Set("Retry-After", "5")
				http.Error(w, `{"error":"too_many_requests"}`, http.StatusTooManyRequests)
				return
			}
		}

		// Recovery.
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic in handler", zap.Any("panic", rec))
				http.Error(w, `{"error":"internal_error"}`, http.StatusInternalServerError)
			}
		}()

		// Request deadline covers the whole pipeline including the solver.
		ctx, cancel := context.WithTimeout(r.Context(), cfg.RequestTimeout)
		defer cancel()

		start := time.Now()
		handler(w, r.WithContext(ctx))
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start).Round(time.Microsecond)))
	}
}
