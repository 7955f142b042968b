package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/versesearch/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

const shutdownTimeout = 5 * time.Second

// instructions tell the client how the tools relate.
const instructions = `Search a verse collection in Arabic, English and Bangla.
Use search_verses for free-text questions; matched terms come back wrapped
in highlight tags. Use suggest_verses to complete a partial phrase in one
language. Use read_verses with a verse id from a search hit to read the
surrounding passage.`

// Server exposes verse search to MCP clients.
type Server struct {
	ports       *Ports
	server      *mcp.Server
	defaultSize int
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:       ports,
		defaultSize: defaultSearchSize,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "versesearch", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// SetDefaultSize sets the search page size used when a call gives none.
// Non-positive values are ignored.
func (s *Server) SetDefaultSize(size int) {
	if size > 0 {
		s.defaultSize = size
	}
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("MCP server running on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves streamable HTTP on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.ServeHTTP(ctx, listener)
}

// ServeHTTP serves streamable HTTP on listener until ctx is cancelled.
func (s *Server) ServeHTTP(ctx context.Context, listener net.Listener) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("MCP server listening on %s", listener.Addr())

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
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
