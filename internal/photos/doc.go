// Package photos provides Google Photos Library operations for the MCP
// tools: listing, filtered search and download URL resolution.
package photos
