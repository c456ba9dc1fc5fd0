// Package driving defines the interfaces the CLI, HTTP API, MCP server
// and TUI use to index documents, answer questions and manage settings.
//
// Implementations live in internal/core/services.
package driving
