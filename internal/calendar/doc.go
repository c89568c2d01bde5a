// Package calendar provides Google Calendar operations for the MCP tools.
package calendar
