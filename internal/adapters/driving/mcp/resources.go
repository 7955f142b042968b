package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for versesearch resources.
	uriScheme = "versesearch://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "health",
		Name:        "health",
		Description: "Search backend and verse index health",
		MIMEType:    "application/json",
	}, s.handleHealthResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "verses/{id}",
		Name:        "verse",
		Description: "A single verse with all translations",
		MIMEType:    "application/json",
	}, s.handleVerseResource)
}

// handleHealthResource returns the current health report.
func (s *Server) handleHealthResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Health == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	report, err := s.ports.Health.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking health: %w", err)
	}

	return jsonResource(req.Params.URI, report)
}

// handleVerseResource returns one verse by id.
func (s *Server) handleVerseResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id, ok := extractVerseID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	page, err := s.ports.Search.Consecutive(ctx, id, 1)
	if err != nil {
		return nil, fmt.Errorf("reading verse: %w", err)
	}
	if len(page.Verses) == 0 || page.Verses[0].ID != id {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return jsonResource(req.Params.URI, page.Verses[0])
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractVerseID extracts the verse id from a URI like versesearch://verses/{id}.
func extractVerseID(uri string) (int64, bool) {
	const prefix = uriScheme + "verses/"

	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(uri, prefix), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
