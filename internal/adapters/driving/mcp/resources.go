package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for officepdf resources.
	uriScheme = "officepdf://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "formats",
		Name:        "formats",
		Description: "Document formats that can be converted to PDF",
		MIMEType:    "application/json",
	}, s.handleFormatsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "history/{requestId}",
		Name:        "conversion",
		Description: "A past conversion by request ID",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}

// handleFormatsResource returns the accepted formats.
func (s *Server) handleFormatsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.formats())
}

// handleHistoryResource returns one history record.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractRequestID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	record, err := s.ports.History.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting conversion: %w", err)
	}

	return jsonResource(req.Params.URI, record)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRequestID extracts the request ID from a URI like officepdf://history/{requestId}.
func extractRequestID(uri string) string {
	const prefix = uriScheme + "history/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
