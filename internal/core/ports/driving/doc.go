// Package driving defines the interfaces that the CLI, TUI and MCP
// adapters use to reach core services.
//
// Implementations of these interfaces live in internal/core/services.
package driving
