// Package cmd implements the command-line interface for gcalphotos.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or streamable HTTP
//   - auth: Run the interactive OAuth consent flow and persist the token
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
