// Package mcp provides an MCP (Model Context Protocol) server adapter for reqsync.
// It lets AI assistants read the record snapshot and trigger reconciliation runs.
package mcp

import "errors"

// ErrMissingRecordService is returned when the record service is not provided.
var ErrMissingRecordService = errors.New("mcp: record service is required")
