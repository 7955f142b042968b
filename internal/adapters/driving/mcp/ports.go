package mcp

import (
	"github.com/custodia-labs/versesearch/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Search answers verse queries.
	Search driving.SearchService

	// Health reports backend state. Optional.
	Health driving.HealthService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
