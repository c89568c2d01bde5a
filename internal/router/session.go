package router

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/gcalphotos/gcalphotos/internal/calendar"
	"github.com/gcalphotos/gcalphotos/internal/photos"
)

// CalendarAPI is the calendar surface handlers dispatch against.
// *calendar.Client implements it; tests substitute fakes.
type CalendarAPI interface {
	CreateEvent(ctx context.Context, input calendar.EventInput) (string, error)
	ListUpcoming(ctx context.Context, calendarID string, maxResults int64) ([]calendar.Event, error)
	UpdateEvent(ctx context.Context, patch calendar.EventPatch) (calendar.Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// PhotosAPI is the photos surface handlers dispatch against.
// *photos.Client implements it; tests substitute fakes.
type PhotosAPI interface {
	List(ctx context.Context, pageSize int64) ([]photos.Item, error)
	Search(ctx context.Context, q photos.SearchQuery) ([]photos.Item, error)
	DownloadURL(ctx context.Context, photoID string) (string, error)
}

// Session bundles the authenticated API clients built from one token. The
// router replaces the whole session when credentials are invalidated.
type Session struct {
	Calendar CalendarAPI
	Photos   PhotosAPI
}

// CredentialSource is the credential store surface the router depends on.
// *googleauth.Store implements it.
type CredentialSource interface {
	EnsureValid(ctx context.Context) (*oauth2.Token, error)
	Invalidate()
}

// SessionBuilder constructs a Session from a valid token.
type SessionBuilder func(ctx context.Context, token *oauth2.Token) (*Session, error)
