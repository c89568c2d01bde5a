package photos

import (
	"context"
	"net/http"
	"time"

	photoslibrary "github.com/gphotosuploader/googlemirror/api/photoslibrary/v1"

	"github.com/gcalphotos/gcalphotos/internal/gapi"
)

// downloadSuffix asks the Photos CDN for the original bytes instead of a
// scaled preview.
const downloadSuffix = "=d"

// Client wraps the Google Photos Library service.
type Client struct {
	svc *photoslibrary.Service
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

// NewClient creates a Photos client on top of an authenticated HTTP client.
func NewClient(httpClient *http.Client, opts ...Option) (*Client, error) {
	svc, err := photoslibrary.New(httpClient)
	if err != nil {
		return nil, &gapi.ServiceBuildError{Service: "photoslibrary", Err: err}
	}

	c := &Client{svc: svc}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// List returns up to pageSize media items, newest first. The library has no
// dedicated list call; a filter-less search returns the unfiltered listing
// in newest-first order.
func (c *Client) List(ctx context.Context, pageSize int64) ([]Item, error) {
	start := time.Now()
	res, err := c.svc.MediaItems.Search(&photoslibrary.SearchMediaItemsRequest{PageSize: pageSize}).Context(ctx).Do()
	gapi.RecordOperation(ctx, c.rec, "photos", "list", err, start)
	if err != nil {
		return nil, gapi.WrapGoogle("media item", "", err)
	}

	return fromAPIItems(res.MediaItems), nil
}

// Search returns media items matching the query. A query without any filters
// degrades to the plain listing so the request never carries an empty
// filters object.
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]Item, error) {
	req := buildSearchRequest(q)
	if req == nil {
		return c.List(ctx, q.PageSize)
	}

	start := time.Now()
	res, err := c.svc.MediaItems.Search(req).Context(ctx).Do()
	gapi.RecordOperation(ctx, c.rec, "photos", "search", err, start)
	if err != nil {
		return nil, gapi.WrapGoogle("media item", "", err)
	}

	return fromAPIItems(res.MediaItems), nil
}

// DownloadURL resolves the download URL for a media item. Base URLs from the
// API expire after roughly an hour and are only valid with the download
// suffix appended.
func (c *Client) DownloadURL(ctx context.Context, photoID string) (string, error) {
	start := time.Now()
	item, err := c.svc.MediaItems.Get(photoID).Context(ctx).Do()
	gapi.RecordOperation(ctx, c.rec, "photos", "get", err, start)
	if err != nil {
		return "", gapi.WrapGoogle("photo", photoID, err)
	}

	return item.BaseUrl + downloadSuffix, nil
}

func fromAPIItems(items []*photoslibrary.MediaItem) []Item {
	out := make([]Item, 0, len(items))
	for _, mi := range items {
		out = append(out, fromAPIItem(mi))
	}
	return out
}
