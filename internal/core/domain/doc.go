// Package domain defines the core business entities for Insight.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ParsedDocument: Normalised text handed over by ingestion
//   - RawConcept: A flat concept as emitted by the model for one call
//   - Concept: A resolved concept with a locally generated identity
//   - AnalysisResult: The aggregate handed to storage
//   - Progress: A structured orchestration event
//
// # Identity
//
// Two identifier namespaces exist. External ids are chosen by the model
// and are only unique within one completion. Internal ids are generated
// locally and are globally unique. Resolution from one to the other
// happens exactly once, during tree assembly.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
