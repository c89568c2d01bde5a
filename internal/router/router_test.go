package router

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/gcalphotos/gcalphotos/internal/calendar"
	"github.com/gcalphotos/gcalphotos/internal/gapi"
	"github.com/gcalphotos/gcalphotos/internal/photos"
)

type fakeCreds struct {
	mu            sync.Mutex
	calls         int32
	invalidations int32
	failuresLeft  int
	delay         time.Duration
}

func (f *fakeCreds) EnsureValid(ctx context.Context) (*oauth2.Token, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return nil, errors.New("consent unavailable")
	}

	return &oauth2.Token{AccessToken: "token"}, nil
}

func (f *fakeCreds) Invalidate() {
	atomic.AddInt32(&f.invalidations, 1)
}

type fakeCalendar struct {
	mu          sync.Mutex
	createCalls int
	listCalls   int
	updateCalls int
	deleteCalls int

	lastInput calendar.EventInput
	lastPatch calendar.EventPatch
	lastList  struct {
		calendarID string
		maxResults int64
	}

	listResult  []calendar.Event
	listErrOnce error
	listErr     error
	updateErr   error
}

func (f *fakeCalendar) CreateEvent(_ context.Context, input calendar.EventInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.lastInput = input
	return "created-1", nil
}

func (f *fakeCalendar) ListUpcoming(_ context.Context, calendarID string, maxResults int64) ([]calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastList.calendarID = calendarID
	f.lastList.maxResults = maxResults

	if f.listErrOnce != nil {
		err := f.listErrOnce
		f.listErrOnce = nil
		return nil, err
	}
	if f.listErr != nil {
		return nil, f.listErr
	}

	return f.listResult, nil
}

func (f *fakeCalendar) UpdateEvent(_ context.Context, patch calendar.EventPatch) (calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	f.lastPatch = patch
	if f.updateErr != nil {
		return calendar.Event{}, f.updateErr
	}
	return calendar.Event{ID: patch.EventID}, nil
}

func (f *fakeCalendar) DeleteEvent(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	return nil
}

type fakePhotos struct {
	mu          sync.Mutex
	listCalls   int
	searchCalls int

	lastPageSize int64
	lastQuery    photos.SearchQuery

	items       []photos.Item
	downloadURL string
	downloadErr error
}

func (f *fakePhotos) List(_ context.Context, pageSize int64) ([]photos.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastPageSize = pageSize
	return f.items, nil
}

func (f *fakePhotos) Search(_ context.Context, q photos.SearchQuery) ([]photos.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	f.lastQuery = q
	return f.items, nil
}

func (f *fakePhotos) DownloadURL(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	return f.downloadURL, nil
}

// newTestRouter wires a router over the fakes and counts session builds.
func newTestRouter(creds *fakeCreds, cal *fakeCalendar, ph *fakePhotos) (*Router, *int32) {
	var builds int32
	build := func(_ context.Context, _ *oauth2.Token) (*Session, error) {
		atomic.AddInt32(&builds, 1)
		return &Session{Calendar: cal, Photos: ph}, nil
	}

	return New(DefaultRegistry(), creds, build), &builds
}

func TestDispatchUnknownTool(t *testing.T) {
	rt, _ := newTestRouter(&fakeCreds{}, &fakeCalendar{}, &fakePhotos{})

	resp := rt.Dispatch(context.Background(), "bogus_tool", nil)

	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Text, "Unknown tool: bogus_tool")
	for _, name := range DefaultRegistry().Names() {
		assert.Contains(t, resp.Text, name)
	}
}

func TestDispatchValidatesBeforeRemoteCall(t *testing.T) {
	cal := &fakeCalendar{}
	rt, _ := newTestRouter(&fakeCreds{}, cal, &fakePhotos{})

	resp := rt.Dispatch(context.Background(), "create_calendar_event", map[string]any{
		"start_time": "2026-03-01T10:00:00Z",
		"end_time":   "2026-03-01T11:00:00Z",
	})

	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Text, "Invalid arguments for create_calendar_event")
	assert.Contains(t, resp.Text, "summary")
	assert.Zero(t, cal.createCalls, "validation failure must not reach the remote API")
}

func TestDispatchCreateEventAppliesDefaults(t *testing.T) {
	cal := &fakeCalendar{}
	rt, _ := newTestRouter(&fakeCreds{}, cal, &fakePhotos{})

	resp := rt.Dispatch(context.Background(), "create_calendar_event", map[string]any{
		"summary":    "Planning",
		"start_time": "2026-03-01T10:00:00Z",
		"end_time":   "2026-03-01T11:00:00Z",
	})

	require.False(t, resp.IsError, resp.Text)
	assert.Contains(t, resp.Text, "✅ Calendar event created successfully!")
	assert.Contains(t, resp.Text, "Event ID: created-1")
	assert.Equal(t, "primary", cal.lastInput.CalendarID)
	assert.Empty(t, cal.lastInput.Description)
	assert.Empty(t, cal.lastInput.Location)
}

func TestDispatchGetEventsEmpty(t *testing.T) {
	cal := &fakeCalendar{}
	rt, _ := newTestRouter(&fakeCreds{}, cal, &fakePhotos{})

	resp := rt.Dispatch(context.Background(), "get_calendar_events", map[string]any{})

	require.False(t, resp.IsError, resp.Text)
	assert.Equal(t, "📅 No upcoming events found in your calendar.", resp.Text)
	assert.Equal(t, int64(10), cal.lastList.maxResults)
	assert.Equal(t, "primary", cal.lastList.calendarID)
}

func TestDispatchUpdatePatchSemantics(t *testing.T) {
	cal := &fakeCalendar{}
	rt, _ := newTestRouter(&fakeCreds{}, cal, &fakePhotos{})

	resp := rt.Dispatch(context.Background(), "update_calendar_event", map[string]any{
		"event_id": "ev1",
		"location": "",
	})

	require.False(t, resp.IsError, resp.Text)
	assert.Contains(t, resp.Text, "Location cleared")

	patch := cal.lastPatch
	require.NotNil(t, patch.Location)
	assert.Empty(t, *patch.Location)
	assert.Nil(t, patch.Summary, "omitted fields must stay nil")
	assert.Nil(t, patch.StartTime)
	assert.Nil(t, patch.EndTime)
	assert.Nil(t, patch.Description)
}

func TestDispatchUpdateRequiresAField(t *testing.T) {
	cal := &fakeCalendar{}
	rt, _ := newTestRouter(&fakeCreds{}, cal, &fakePhotos{})

	resp := rt.Dispatch(context.Background(), "update_calendar_event", map[string]any{
		"event_id": "ev1",
	})

	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Text, "at least one field")
	assert.Zero(t, cal.updateCalls)
}

func TestDispatchSearchPhotos(t *testing.T) {
	t.Run("dates truncate to days", func(t *testing.T) {
		ph := &fakePhotos{items: []photos.Item{{ID: "m1", Filename: "a.jpg"}}}
		rt, _ := newTestRouter(&fakeCreds{}, &fakeCalendar{}, ph)

		resp := rt.Dispatch(context.Background(), "search_photos", map[string]any{
			"start_date": "2024-01-01T15:30:00Z",
			"end_date":   "2024-01-31T03:00:00Z",
			"media_type": "PHOTO",
		})

		require.False(t, resp.IsError, resp.Text)
		require.NotNil(t, ph.lastQuery.StartDate)
		require.NotNil(t, ph.lastQuery.EndDate)
		assert.Equal(t, photos.Day{Year: 2024, Month: 1, Day: 1}, *ph.lastQuery.StartDate)
		assert.Equal(t, photos.Day{Year: 2024, Month: 1, Day: 31}, *ph.lastQuery.EndDate)
		assert.Equal(t, int64(25), ph.lastQuery.PageSize)
		assert.Contains(t, resp.Text, "after 2024-01-01T15:30:00Z")
		assert.Contains(t, resp.Text, "type: PHOTO")
	})

	t.Run("unparseable date fails before the remote call", func(t *testing.T) {
		ph := &fakePhotos{}
		rt, _ := newTestRouter(&fakeCreds{}, &fakeCalendar{}, ph)

		resp := rt.Dispatch(context.Background(), "search_photos", map[string]any{
			"start_date": "last tuesday",
		})

		assert.True(t, resp.IsError)
		assert.Contains(t, resp.Text, "Error searching photos")
		assert.Zero(t, ph.searchCalls)
	})

	t.Run("invalid media type rejected", func(t *testing.T) {
		ph := &fakePhotos{}
		rt, _ := newTestRouter(&fakeCreds{}, &fakeCalendar{}, ph)

		resp := rt.Dispatch(context.Background(), "search_photos", map[string]any{
			"media_type": "GIF",
		})

		assert.True(t, resp.IsError)
		assert.Zero(t, ph.searchCalls)
	})
}

func TestDispatchDownloadURL(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ph := &fakePhotos{downloadURL: "https://example/x=d"}
		rt, _ := newTestRouter(&fakeCreds{}, &fakeCalendar{}, ph)

		resp := rt.Dispatch(context.Background(), "get_photo_download_url", map[string]any{
			"photo_id": "abc123",
		})

		require.False(t, resp.IsError, resp.Text)
		assert.Contains(t, resp.Text, "https://example/x=d")
		assert.Contains(t, resp.Text, "abc123")
	})

	t.Run("missing photo", func(t *testing.T) {
		ph := &fakePhotos{downloadErr: &gapi.NotFoundError{Kind: "photo", ID: "nope"}}
		rt, _ := newTestRouter(&fakeCreds{}, &fakeCalendar{}, ph)

		resp := rt.Dispatch(context.Background(), "get_photo_download_url", map[string]any{
			"photo_id": "nope",
		})

		assert.True(t, resp.IsError)
		assert.Contains(t, resp.Text, "Error getting photo download URL")
		assert.Contains(t, resp.Text, `photo "nope" not found`)
	})
}

func TestDispatchAuthFailureIsRetryable(t *testing.T) {
	creds := &fakeCreds{failuresLeft: 1}
	rt, builds := newTestRouter(creds, &fakeCalendar{}, &fakePhotos{})

	resp := rt.Dispatch(context.Background(), "get_photos", map[string]any{})
	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Text, "Error authenticating with Google for tool get_photos")
	assert.Equal(t, StateFailed, rt.State())
	assert.Zero(t, atomic.LoadInt32(builds))

	resp = rt.Dispatch(context.Background(), "get_photos", map[string]any{})
	assert.False(t, resp.IsError, resp.Text)
	assert.Equal(t, StateReady, rt.State())
	assert.Equal(t, int32(1), atomic.LoadInt32(builds))
}

func TestConcurrentDispatchSingleAuth(t *testing.T) {
	creds := &fakeCreds{delay: 20 * time.Millisecond}
	ph := &fakePhotos{}
	rt, builds := newTestRouter(creds, &fakeCalendar{}, ph)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := rt.Dispatch(context.Background(), "get_photos", map[string]any{})
			assert.False(t, resp.IsError, resp.Text)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&creds.calls), "concurrent dispatches must share one auth sequence")
	assert.Equal(t, int32(1), atomic.LoadInt32(builds))
	assert.Equal(t, 8, ph.listCalls)
}

func TestDispatchReauthOnRemoteRejection(t *testing.T) {
	creds := &fakeCreds{}
	cal := &fakeCalendar{
		listErrOnce: &googleapi.Error{Code: 401, Message: "Invalid Credentials"},
		listResult:  []calendar.Event{{ID: "ev1", Summary: "Standup", Start: "2026-03-01T09:00:00Z"}},
	}
	rt, builds := newTestRouter(creds, cal, &fakePhotos{})

	resp := rt.Dispatch(context.Background(), "get_calendar_events", map[string]any{})

	require.False(t, resp.IsError, resp.Text)
	assert.Contains(t, resp.Text, "Standup")
	assert.Equal(t, 2, cal.listCalls, "handler retried once after re-auth")
	assert.Equal(t, int32(1), atomic.LoadInt32(&creds.invalidations))
	assert.Equal(t, int32(2), atomic.LoadInt32(&creds.calls))
	assert.Equal(t, int32(2), atomic.LoadInt32(builds))
	assert.Equal(t, StateReady, rt.State())
}

func TestDispatchReauthOnWrappedRejection(t *testing.T) {
	// Session clients hand back errors already mapped through
	// gapi.WrapGoogle; a 403 with an auth reason must still trigger the
	// invalidate-and-retry path after mapping.
	creds := &fakeCreds{}
	cal := &fakeCalendar{
		listErrOnce: gapi.WrapGoogle("event", "", &googleapi.Error{
			Code:    403,
			Message: "Request had invalid authentication credentials",
			Errors:  []googleapi.ErrorItem{{Reason: "authError"}},
		}),
		listResult: []calendar.Event{{ID: "ev1", Summary: "Standup", Start: "2026-03-01T09:00:00Z"}},
	}
	rt, _ := newTestRouter(creds, cal, &fakePhotos{})

	resp := rt.Dispatch(context.Background(), "get_calendar_events", map[string]any{})

	require.False(t, resp.IsError, resp.Text)
	assert.Contains(t, resp.Text, "Standup")
	assert.Equal(t, 2, cal.listCalls, "handler retried once after re-auth")
	assert.Equal(t, int32(1), atomic.LoadInt32(&creds.invalidations))
}

func TestDispatchReauthHappensOnlyOnce(t *testing.T) {
	creds := &fakeCreds{}
	cal := &fakeCalendar{listErr: &googleapi.Error{Code: 401, Message: "Invalid Credentials"}}
	rt, _ := newTestRouter(creds, cal, &fakePhotos{})

	resp := rt.Dispatch(context.Background(), "get_calendar_events", map[string]any{})

	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Text, "Error getting calendar events")
	assert.Equal(t, 2, cal.listCalls)
	assert.Equal(t, int32(1), atomic.LoadInt32(&creds.invalidations))
}

func TestDispatchNonAuthErrorDoesNotReauth(t *testing.T) {
	creds := &fakeCreds{}
	cal := &fakeCalendar{listErr: &googleapi.Error{Code: 500, Message: "backend error"}}
	rt, _ := newTestRouter(creds, cal, &fakePhotos{})

	resp := rt.Dispatch(context.Background(), "get_calendar_events", map[string]any{})

	assert.True(t, resp.IsError)
	assert.Equal(t, 1, cal.listCalls)
	assert.Zero(t, atomic.LoadInt32(&creds.invalidations))
}
