package googleauth

import (
	photoslibrary "github.com/gphotosuploader/googlemirror/api/photoslibrary/v1"
	calendar "google.golang.org/api/calendar/v3"
)

// Scopes returns the Google OAuth scopes required for full functionality.
//
// The scopes provide access to:
//   - Google Calendar: full access (create, list, update, delete events)
//   - Google Photos Library: read-only (list, search, download URLs)
func Scopes() []string {
	return []string{
		calendar.CalendarScope,
		photoslibrary.PhotoslibraryReadonlyScope,
	}
}
