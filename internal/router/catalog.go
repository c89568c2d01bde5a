package router

func intPtr(n int64) *int64 {
	return &n
}

// DefaultRegistry returns the catalog of calendar and photos tools, calendar
// tools first. The catalog order is what hosts see when listing tools and
// what the unknown-tool envelope enumerates.
func DefaultRegistry() *Registry {
	return NewRegistry(
		ToolDefinition{
			Name:        "create_calendar_event",
			Description: "Create a new event in Google Calendar",
			Fields: []Field{
				{Name: "summary", Type: FieldString, Required: true, Description: "Event title"},
				{Name: "start_time", Type: FieldString, Required: true, Description: "Event start time as an RFC3339 timestamp, e.g. 2026-03-01T10:00:00Z"},
				{Name: "end_time", Type: FieldString, Required: true, Description: "Event end time as an RFC3339 timestamp"},
				{Name: "description", Type: FieldString, Default: "", Description: "Event description"},
				{Name: "location", Type: FieldString, Default: "", Description: "Event location"},
				{Name: "calendar_id", Type: FieldString, Default: "primary", Description: "Calendar to create the event in"},
			},
		},
		ToolDefinition{
			Name:        "get_calendar_events",
			Description: "List upcoming events from Google Calendar, ordered by start time",
			Fields: []Field{
				{Name: "max_results", Type: FieldInteger, Default: int64(10), Min: intPtr(1), Max: intPtr(2500), Description: "Maximum number of events to return"},
				{Name: "calendar_id", Type: FieldString, Default: "primary", Description: "Calendar to list events from"},
			},
		},
		ToolDefinition{
			Name:        "update_calendar_event",
			Description: "Update fields of an existing Google Calendar event. Omitted fields are left unchanged; an empty string clears the field.",
			Fields: []Field{
				{Name: "event_id", Type: FieldString, Required: true, Description: "ID of the event to update"},
				{Name: "summary", Type: FieldString, Description: "New event title"},
				{Name: "start_time", Type: FieldString, Description: "New start time as an RFC3339 timestamp"},
				{Name: "end_time", Type: FieldString, Description: "New end time as an RFC3339 timestamp"},
				{Name: "description", Type: FieldString, Description: "New event description"},
				{Name: "location", Type: FieldString, Description: "New event location"},
				{Name: "calendar_id", Type: FieldString, Default: "primary", Description: "Calendar containing the event"},
			},
		},
		ToolDefinition{
			Name:        "delete_calendar_event",
			Description: "Delete an event from Google Calendar",
			Fields: []Field{
				{Name: "event_id", Type: FieldString, Required: true, Description: "ID of the event to delete"},
				{Name: "calendar_id", Type: FieldString, Default: "primary", Description: "Calendar containing the event"},
			},
		},
		ToolDefinition{
			Name:        "get_photos",
			Description: "List recent photos from Google Photos, newest first",
			Fields: []Field{
				{Name: "page_size", Type: FieldInteger, Default: int64(25), Min: intPtr(1), Max: intPtr(100), Description: "Maximum number of photos to return"},
			},
		},
		ToolDefinition{
			Name:        "search_photos",
			Description: "Search Google Photos by date range and media type. All filters are optional; date bounds apply to whole days.",
			Fields: []Field{
				{Name: "start_date", Type: FieldString, Description: "Earliest creation date, RFC3339 or YYYY-MM-DD"},
				{Name: "end_date", Type: FieldString, Description: "Latest creation date, RFC3339 or YYYY-MM-DD"},
				{Name: "media_type", Type: FieldString, Enum: []string{"PHOTO", "VIDEO"}, Description: "Restrict results to a media type"},
				{Name: "page_size", Type: FieldInteger, Default: int64(25), Min: intPtr(1), Max: intPtr(100), Description: "Maximum number of photos to return"},
			},
		},
		ToolDefinition{
			Name:        "get_photo_download_url",
			Description: "Get a download URL for a photo in Google Photos. The URL expires after approximately 1 hour.",
			Fields: []Field{
				{Name: "photo_id", Type: FieldString, Required: true, Description: "ID of the photo"},
			},
		},
	)
}
