package calendar

import (
	"context"
	"net/http"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/gcalphotos/gcalphotos/internal/gapi"
)

// Client wraps the Google Calendar service.
type Client struct {
	svc *calendar.Service
	rec gapi.OperationRecorder
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics sets the recorder that receives per-operation timings.
func WithMetrics(rec gapi.OperationRecorder) Option {
	return func(c *Client) {
		c.rec = rec
	}
}

// NewClient creates a Calendar client on top of an authenticated HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...Option) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, &gapi.ServiceBuildError{Service: "calendar", Err: err}
	}

	c := &Client{svc: svc}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// CreateEvent inserts a new event and returns its ID.
func (c *Client) CreateEvent(ctx context.Context, input EventInput) (string, error) {
	start := time.Now()
	created, err := c.svc.Events.Insert(input.CalendarID, buildEvent(input)).Context(ctx).Do()
	gapi.RecordOperation(ctx, c.rec, "calendar", "insert", err, start)
	if err != nil {
		return "", gapi.WrapGoogle("calendar", input.CalendarID, err)
	}

	return created.Id, nil
}

// ListUpcoming returns up to maxResults events starting from now, ordered by
// start time.
func (c *Client) ListUpcoming(ctx context.Context, calendarID string, maxResults int64) ([]Event, error) {
	start := time.Now()
	res, err := c.svc.Events.List(calendarID).
		TimeMin(start.UTC().Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).Do()
	gapi.RecordOperation(ctx, c.rec, "calendar", "list", err, start)
	if err != nil {
		return nil, gapi.WrapGoogle("calendar", calendarID, err)
	}

	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		events = append(events, fromAPIEvent(item))
	}

	return events, nil
}

// UpdateEvent fetches the event, applies the patch and writes the merged
// event back. Nil patch fields are untouched; empty-string fields are
// cleared.
func (c *Client) UpdateEvent(ctx context.Context, patch EventPatch) (Event, error) {
	start := time.Now()
	existing, err := c.svc.Events.Get(patch.CalendarID, patch.EventID).Context(ctx).Do()
	if err != nil {
		gapi.RecordOperation(ctx, c.rec, "calendar", "update", err, start)
		return Event{}, gapi.WrapGoogle("event", patch.EventID, err)
	}

	mergePatch(existing, patch)

	updated, err := c.svc.Events.Update(patch.CalendarID, patch.EventID, existing).Context(ctx).Do()
	gapi.RecordOperation(ctx, c.rec, "calendar", "update", err, start)
	if err != nil {
		return Event{}, gapi.WrapGoogle("event", patch.EventID, err)
	}

	return fromAPIEvent(updated), nil
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	start := time.Now()
	err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
	gapi.RecordOperation(ctx, c.rec, "calendar", "delete", err, start)
	if err != nil {
		return gapi.WrapGoogle("event", eventID, err)
	}

	return nil
}
