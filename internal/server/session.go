package server

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/gcalphotos/gcalphotos/internal/calendar"
	"github.com/gcalphotos/gcalphotos/internal/gapi"
	"github.com/gcalphotos/gcalphotos/internal/googleauth"
	"github.com/gcalphotos/gcalphotos/internal/photos"
	"github.com/gcalphotos/gcalphotos/internal/router"
)

// NewSessionBuilder returns a router.SessionBuilder that constructs
// authenticated Calendar and Photos clients from a token. A nil recorder
// disables per-operation metrics.
//
// Clients are built on baseCtx, not the dispatch context: the session
// outlives individual tool calls and a cancelled dispatch must not poison
// the shared HTTP client. Per-call cancellation is applied by the clients
// on each request.
func NewSessionBuilder(baseCtx context.Context, store *googleauth.Store, rec gapi.OperationRecorder) router.SessionBuilder {
	return func(_ context.Context, token *oauth2.Token) (*router.Session, error) {
		conf, err := store.OAuthConfig()
		if err != nil {
			return nil, err
		}

		httpClient := gapi.NewHTTPClient(baseCtx, conf, token)

		calendarClient, err := calendar.NewClient(baseCtx, httpClient, calendar.WithMetrics(rec))
		if err != nil {
			return nil, err
		}

		photosClient, err := photos.NewClient(httpClient, photos.WithMetrics(rec))
		if err != nil {
			return nil, err
		}

		return &router.Session{
			Calendar: calendarClient,
			Photos:   photosClient,
		}, nil
	}
}
