// Package googleauth manages the OAuth credential lifecycle for a single
// Google account: loading the client secret document, caching and refreshing
// tokens, running the consent flow, and persisting tokens atomically.
package googleauth
