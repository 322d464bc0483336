// Package domain defines the core business entities for reqsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Requirement: A titled unit of the requirements document
//   - Change: An added, modified or removed requirement between two runs
//   - Record: A structured test record with named fields and timestamps
//   - CoverageAnalysis: How well existing records cover a requirement
//   - UpdatePlan: What the current run will generate, update or flag
//   - RunReport: The outcome of a reconciliation run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
