package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// uriScheme is the custom URI scheme for unisearch resources.
const uriScheme = "unisearch://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Registered search backends and the content types they produce",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	if s.ports.Document == nil {
		return
	}

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sources/{sourceId}/documents",
		Name:        "source-documents",
		Description: "Documents stored in a local source (memory, kanban, wiki)",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{sourceId}/{documentId}",
		Name:        "document-content",
		Description: "Content of a document in a local source",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)
}

// handleSourcesResource lists the registered backends.
func (s *Server) handleSourcesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.ports.Search.Sources(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sources: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

// handleDocumentsResource lists the documents of a local source.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sourceID := extractSourceID(req.Params.URI)
	if sourceID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Document.List(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		ID        string   `json:"id"`
		Type      string   `json:"type"`
		Title     string   `json:"title"`
		URI       string   `json:"uri,omitempty"`
		Tags      []string `json:"tags,omitempty"`
		UpdatedAt string   `json:"updated_at"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			ID:        docs[i].ID,
			Type:      string(docs[i].Type),
			Title:     docs[i].Title,
			URI:       docs[i].URI,
			Tags:      docs[i].Tags,
			UpdatedAt: docs[i].UpdatedAt.UTC().Format(time.RFC3339),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

// handleDocumentContentResource returns the body of a local document.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sourceID, docID := extractDocumentRef(req.Params.URI)
	if sourceID == "" || docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Document.Get(ctx, sourceID, docID)
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     doc.Content,
		}},
	}, nil
}

func jsonResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractSourceID extracts the source ID from a URI like unisearch://sources/{sourceId}/documents.
func extractSourceID(uri string) string {
	const prefix = uriScheme + "sources/"
	const suffix = "/documents"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}
	id := strings.TrimSuffix(uri, suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

// extractDocumentRef extracts source and document IDs from a URI like
// unisearch://documents/{sourceId}/{documentId}.
func extractDocumentRef(uri string) (sourceID, docID string) {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return "", ""
	}
	sourceID, docID, ok := strings.Cut(strings.TrimPrefix(uri, prefix), "/")
	if !ok {
		return "", ""
	}
	return sourceID, docID
}
