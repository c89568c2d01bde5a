package gapi

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// NewHTTPClient returns an HTTP client that authenticates requests with the
// given token, refreshing it through conf when it expires.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors
// with some Google endpoints.
func NewHTTPClient(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) *http.Client {
	client := oauth2.NewClient(ctx, conf.TokenSource(ctx, token))

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	return client
}
