// Package logging provides structured logging helpers built on log/slog.
//
// It defines the attribute keys used across the codebase (tool, operation,
// service, status, error) together with With* helpers that attach them to a
// logger, and a Setup function that installs a text handler writing to
// stderr. Stdout is never used for logs because the stdio MCP transport owns
// it.
package logging
