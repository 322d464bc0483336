package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for reqsync resources.
	uriScheme = "reqsync://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "records",
		Name:        "records",
		Description: "All test records in the current snapshot",
		MIMEType:    "application/json",
	}, s.handleRecordsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "records/{recordId}",
		Name:        "record",
		Description: "A single test record",
		MIMEType:    "application/json",
	}, s.handleRecordResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "template",
		Name:        "template",
		Description: "The record template in use",
		MIMEType:    "application/json",
	}, s.handleTemplateResource)
}

func (s *Server) handleRecordsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	records, err := s.ports.Records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	tmpl := s.ports.Records.Template()
	out := make([]RecordOutput, len(records))
	for i, r := range records {
		out[i] = toRecordOutput(tmpl, r)
	}
	return jsonResult(req.Params.URI, out)
}

func (s *Server) handleRecordResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// reqsync://records/{recordId}
	id := extractRecordID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	rec, err := s.ports.Records.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return jsonResult(req.Params.URI, toRecordOutput(s.ports.Records.Template(), *rec))
}

func (s *Server) handleTemplateResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	tmpl := s.ports.Records.Template()
	return jsonResult(req.Params.URI, map[string]any{
		"fields":          tmpl.FieldNames(),
		"identity_field":  tmpl.IdentityField,
		"title_field":     tmpl.TitleField,
		"trace_field":     tmpl.TraceField,
		"identity_format": tmpl.IdentityFormat,
		"delimiter":       tmpl.Delimiter,
	})
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
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

// extractRecordID extracts the record ID from a URI like reqsync://records/{recordId}.
func extractRecordID(uri string) string {
	const prefix = uriScheme + "records/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.TrimPrefix(uri, prefix)
}
