// Package mcp provides an MCP (Model Context Protocol) server adapter for versesearch.
// It lets AI assistants search, complete and read verses.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
