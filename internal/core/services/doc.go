// Package services implements the driving port interfaces.
// Services contain the reconciliation engine and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO or external dependencies beyond
// small algorithmic libraries (line diffs, errgroup).
package services
