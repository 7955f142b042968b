// Package httpapi exposes the verse services over a JSON HTTP API.
//
// Public routes (search, suggest, read) are rate limited with a token
// bucket. Admin routes (upload, health) require HTTP basic auth.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/versesearch/internal/core/ports/driving"
	"github.com/custodia-labs/versesearch/internal/core/services"
	"github.com/custodia-labs/versesearch/internal/logger"
)

// Route prefix shared by every endpoint.
const apiPrefix = "/api/v1/verses"

const shutdownTimeout = 10 * time.Second

// Services are the core ports the API drives.
type Services struct {
	Search driving.SearchService
	Ingest driving.IngestService
	Health driving.HealthService

	// Locks serialises uploads per index.
	Locks *services.IndexLocks

	// Index is the name of the verse index uploads write to.
	Index string
}

// Options configures the server.
type Options struct {
	Listen        string
	AdminUsername string
	AdminPassword string

	// RateLimit is the sustained public request rate per second. Zero disables limiting.
	RateLimit float64
	Burst     int

	// MaxUploadBytes bounds an upload body.
	MaxUploadBytes int64

	// DefaultSize is the search page size when none is given.
	DefaultSize int
}

// Server is the HTTP API.
type Server struct {
	svc     Services
	opts    Options
	limiter *rate.Limiter

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

// NewServer validates the wiring and creates a server.
func NewServer(svc Services, opts Options) (*Server, error) {
	if svc.Search == nil || svc.Ingest == nil || svc.Health == nil {
		return nil, errors.New("search, ingest and health services are required")
	}
	if opts.AdminUsername == "" || opts.AdminPassword == "" {
		return nil, errors.New("admin credentials are required")
	}
	if svc.Locks == nil {
		svc.Locks = services.NewIndexLocks()
	}
	if opts.DefaultSize <= 0 {
		opts.DefaultSize = 10
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}

	s := &Server{svc: svc, opts: opts}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	public := func(h http.HandlerFunc) http.Handler { return s.rateLimited(h) }
	admin := func(h http.HandlerFunc) http.Handler { return s.adminOnly(h) }

	mux.Handle("GET "+apiPrefix+"/search", public(s.handleSearch))
	mux.Handle("GET "+apiPrefix+"/suggest", public(s.handleSuggest))
	mux.Handle("GET "+apiPrefix+"/suggestions", public(s.handleSuggest))
	mux.Handle("GET "+apiPrefix+"/read", public(s.handleRead))
	mux.Handle("POST "+apiPrefix+"/admin/upload", admin(s.handleUpload))
	mux.Handle("GET "+apiPrefix+"/admin/health", admin(s.handleHealth))
	mux.Handle("GET "+apiPrefix+"/admin/history", admin(s.handleHistory))

	return withRequestLog(withJSONHeaders(mux))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Listen, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	logger.Info("HTTP API listening on %s", listener.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down HTTP API")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// Addr returns the bound address once serving, or "".
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
