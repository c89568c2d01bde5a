// Package router is the core of the server: a catalog of tool definitions
// with schema validation, and a dispatcher that lazily establishes the
// authenticated Google session, routes tool calls to handlers and converts
// every outcome into a response envelope.
package router
