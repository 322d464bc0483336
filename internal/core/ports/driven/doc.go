// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for a run to function:
//
//   - Oracle: Generates record text and coverage classifications
//   - DocumentSource: Reads the current requirements document
//   - RequirementExtractor: Splits document text into requirements
//   - RecordStore: Record snapshot persistence
//   - CacheStore: Previous document snapshot persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the run skips the corresponding output:
//
//   - RunStore: Run report history
//   - ReportWriter: Human-readable run reports
//   - RecordExporter: Snapshot export after each run
//   - MetricsSink: Run metrics
//   - PromptStore: User-editable prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
