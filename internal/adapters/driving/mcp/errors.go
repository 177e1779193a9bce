// Package mcp provides an MCP (Model Context Protocol) server adapter for unisearch.
// It lets AI assistants run federated searches and inspect the cache, analytics
// and the local index.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrDocumentsUnavailable is returned by document tools when no document service is set.
var ErrDocumentsUnavailable = errors.New("mcp: document service not configured")
