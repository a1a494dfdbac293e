// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
//   - AnalysisOrchestrator: chunking, completion, merge and tree assembly
//   - IngestService: files and URLs to parsed documents
//   - SettingsService: typed settings over the config store
package services
