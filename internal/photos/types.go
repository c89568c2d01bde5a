package photos

import (
	"time"

	photoslibrary "github.com/gphotosuploader/googlemirror/api/photoslibrary/v1"

	"github.com/gcalphotos/gcalphotos/internal/gapi"
)

// Item is the subset of a media item surfaced through tools. CreationTime
// carries the wire value unchanged. The base URL is deliberately absent:
// download URLs are only handed out with the download suffix applied.
type Item struct {
	ID           string
	Filename     string
	MimeType     string
	CreationTime string
	CameraMake   string
	CameraModel  string
}

// Day is a calendar day used for search bounds. Search filters operate on
// whole days, so any time-of-day component is discarded when parsing.
type Day struct {
	Year  int64
	Month int64
	Day   int64
}

// SearchQuery describes a media item search. Nil date bounds and an empty
// media type mean "no filter".
type SearchQuery struct {
	StartDate *Day
	EndDate   *Day
	MediaType string
	PageSize  int64
}

// ParseDay parses a date bound given as RFC3339 or YYYY-MM-DD and truncates
// it to a calendar day.
func ParseDay(value string) (Day, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		return Day{
			Year:  int64(t.Year()),
			Month: int64(t.Month()),
			Day:   int64(t.Day()),
		}, nil
	}

	return Day{}, &gapi.InvalidArgumentError{
		Field:  "date",
		Reason: "must be an RFC3339 timestamp or a YYYY-MM-DD date, got " + value,
	}
}

func (d Day) apiDate() *photoslibrary.Date {
	return &photoslibrary.Date{Year: d.Year, Month: d.Month, Day: d.Day}
}

func fromAPIItem(mi *photoslibrary.MediaItem) Item {
	item := Item{
		ID:       mi.Id,
		Filename: mi.Filename,
		MimeType: mi.MimeType,
	}

	if mi.MediaMetadata != nil {
		item.CreationTime = mi.MediaMetadata.CreationTime
		if mi.MediaMetadata.Photo != nil {
			item.CameraMake = mi.MediaMetadata.Photo.CameraMake
			item.CameraModel = mi.MediaMetadata.Photo.CameraModel
		}
	}

	return item
}

// buildSearchRequest converts a query into the API request, or nil when the
// query carries no filters at all (the caller falls back to a plain listing).
func buildSearchRequest(q SearchQuery) *photoslibrary.SearchMediaItemsRequest {
	if q.StartDate == nil && q.EndDate == nil && q.MediaType == "" {
		return nil
	}

	filters := &photoslibrary.Filters{}

	if q.StartDate != nil || q.EndDate != nil {
		dateRange := &photoslibrary.DateRange{}
		if q.StartDate != nil {
			dateRange.StartDate = q.StartDate.apiDate()
		}
		if q.EndDate != nil {
			dateRange.EndDate = q.EndDate.apiDate()
		}
		filters.DateFilter = &photoslibrary.DateFilter{
			Ranges: []*photoslibrary.DateRange{dateRange},
		}
	}

	if q.MediaType != "" {
		filters.MediaTypeFilter = &photoslibrary.MediaTypeFilter{
			MediaTypes: []string{q.MediaType},
		}
	}

	return &photoslibrary.SearchMediaItemsRequest{
		PageSize: q.PageSize,
		Filters:  filters,
	}
}
