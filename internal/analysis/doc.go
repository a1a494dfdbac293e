// Package analysis groups the pure stages of the document-analysis pipeline.
//
// Each subpackage is side-effect free and knows nothing about transport or
// storage:
//
//   - chunker: paragraph-bounded word chunking
//   - prompt: system and user prompt rendering
//   - response: tolerant decoding of model output into typed errors
//   - merge: identity qualification and title deduplication
//   - tree: resolution of flat concepts into a parent/child hierarchy
//   - render: Markdown, JSON and outline output of a finished result
//
// The orchestrator in internal/core/services wires them together.
package analysis
