// Package server wires the tool router into the MCP transport layer.
//
// It owns the long-lived ServerContext, registers the tool catalog with
// the mcp-go server, builds authenticated Google API sessions for the
// router, and runs the dedicated Prometheus metrics listener.
package server
