package mcp

import (
	"net/http"

	"github.com/four-robots/unisearch/internal/core/ports/driving"
)

// Ports aggregates the driving ports and handlers the MCP server uses.
type Ports struct {
	// Search provides federated search, cache and analytics.
	Search driving.SearchService

	// Document manages the local index. Optional.
	Document driving.DocumentService

	// Metrics is mounted at /metrics in HTTP mode. Optional.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
