package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driving"
)

// ErrReconcilerUnavailable is returned by run tools when no reconciler is wired.
var ErrReconcilerUnavailable = errors.New("mcp: reconciler not configured")

// ListRecordsInput is the input schema for the list_records tool.
type ListRecordsInput struct {
	Requirement string `json:"requirement,omitempty" jsonschema:"only records tracing to this requirement id"`
	Limit       int    `json:"limit,omitempty" jsonschema:"maximum number of records to return (default 50)"`
}

// RecordOutput is one record as returned by tools.
type RecordOutput struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Fields    map[string]string `json:"fields"`
	CreatedAt string            `json:"created_at,omitempty"`
	UpdatedAt string            `json:"updated_at,omitempty"`
}

// ListRecordsOutput is the output schema for the list_records tool.
type ListRecordsOutput struct {
	Records []RecordOutput `json:"records"`
	Count   int            `json:"count"`
	Total   int            `json:"total"`
}

// GetRecordInput is the input schema for the get_record tool.
type GetRecordInput struct {
	ID string `json:"id" jsonschema:"the record identity, e.g. TC-001"`
}

// RunInput is the input schema for the run_reconcile tool.
type RunInput struct {
	Mode   string `json:"mode,omitempty" jsonschema:"update mode: new_only, full_sync or intelligent"`
	Force  bool   `json:"force,omitempty" jsonschema:"process the document even if unchanged"`
	DryRun bool   `json:"dry_run,omitempty" jsonschema:"plan and generate without writing"`
}

// RunOutput summarises a run report.
type RunOutput struct {
	RunID                 string               `json:"run_id"`
	Mode                  string               `json:"mode"`
	StartedAt             string               `json:"started_at"`
	DurationSeconds       float64              `json:"duration_seconds"`
	RequirementsProcessed int                  `json:"requirements_processed"`
	Stats                 domain.RunStatistics `json:"stats"`
	Changes               int                  `json:"changes"`
	Skipped               bool                 `json:"skipped"`
	Failed                bool                 `json:"failed"`
	Warnings              []string             `json:"warnings,omitempty"`
	Errors                []string             `json:"errors,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_records",
		Description: "List test records in the current snapshot",
	}, s.handleListRecords)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_record",
		Description: "Get one test record by identity",
	}, s.handleGetRecord)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "last_run",
		Description: "Summarise the most recent reconciliation run",
	}, s.handleLastRun)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_reconcile",
		Description: "Reconcile the requirements document with the test records",
	}, s.handleRun)
}

func (s *Server) handleListRecords(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRecordsInput,
) (*mcp.CallToolResult, ListRecordsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	records, err := s.ports.Records.List(ctx)
	if err != nil {
		return nil, ListRecordsOutput{}, err
	}

	tmpl := s.ports.Records.Template()
	output := ListRecordsOutput{Records: []RecordOutput{}}
	for _, r := range records {
		if input.Requirement != "" && !tmpl.TracesTo(r, input.Requirement) {
			continue
		}
		output.Total++
		if len(output.Records) < limit {
			output.Records = append(output.Records, toRecordOutput(tmpl, r))
		}
	}
	output.Count = len(output.Records)
	return nil, output, nil
}

func (s *Server) handleGetRecord(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetRecordInput,
) (*mcp.CallToolResult, RecordOutput, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, RecordOutput{}, fmt.Errorf("id is required: %w", domain.ErrInvalidInput)
	}
	rec, err := s.ports.Records.Get(ctx, input.ID)
	if err != nil {
		return nil, RecordOutput{}, err
	}
	return nil, toRecordOutput(s.ports.Records.Template(), *rec), nil
}

func (s *Server) handleLastRun(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, RunOutput, error) {
	if s.ports.Reconciler == nil {
		return nil, RunOutput{}, ErrReconcilerUnavailable
	}
	report, err := s.ports.Reconciler.LastRun(ctx)
	if err != nil {
		return nil, RunOutput{}, err
	}
	return nil, toRunOutput(report), nil
}

func (s *Server) handleRun(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunInput,
) (*mcp.CallToolResult, RunOutput, error) {
	if s.ports.Reconciler == nil {
		return nil, RunOutput{}, ErrReconcilerUnavailable
	}

	mode := domain.UpdateMode(input.Mode)
	if mode != "" && !mode.IsValid() {
		return nil, RunOutput{}, fmt.Errorf("mode %q: %w", input.Mode, domain.ErrInvalidMode)
	}

	report, err := s.ports.Reconciler.Run(ctx, driving.RunOptions{Mode: mode, Force: input.Force, DryRun: input.DryRun})
	if report == nil {
		return nil, RunOutput{}, err
	}
	// A failed run is reported in the output rather than as a protocol error.
	return nil, toRunOutput(report), nil
}

func toRecordOutput(tmpl domain.RecordTemplate, r domain.Record) RecordOutput {
	out := RecordOutput{
		ID:     r.Get(tmpl.IdentityField),
		Title:  r.Get(tmpl.TitleField),
		Fields: r.Fields,
	}
	if !r.CreatedAt.IsZero() {
		out.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	if !r.UpdatedAt.IsZero() {
		out.UpdatedAt = r.UpdatedAt.Format(time.RFC3339)
	}
	return out
}

func toRunOutput(r *domain.RunReport) RunOutput {
	return RunOutput{
		RunID:                 r.RunID,
		Mode:                  string(r.Mode),
		StartedAt:             r.StartedAt.Format(time.RFC3339),
		DurationSeconds:       r.Duration().Seconds(),
		RequirementsProcessed: r.RequirementsProcessed,
		Stats:                 r.Stats,
		Changes:               len(r.Changes),
		Skipped:               r.Skipped,
		Failed:                r.Failed,
		Warnings:              r.Warnings,
		Errors:                r.Errors,
	}
}
