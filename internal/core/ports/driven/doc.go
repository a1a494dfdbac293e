// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - CompletionClient: One request/response exchange with the LLM endpoint
//   - Normaliser: Transforms raw bytes into a ParsedDocument
//   - NormaliserRegistry: Selects the appropriate normaliser
//   - AnalysisStore: Durable persistence of analysis results
//   - ConfigStore: Application configuration
//   - Fetcher: Downloads documents given by URL
//
// # Optional Interfaces
//
//   - PromptStore: User-editable prompt templates. Without it, built-in prompts are used.
//   - FileWatcher: Change notification for the watch command
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
