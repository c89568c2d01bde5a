package router

import (
	"context"

	"github.com/gcalphotos/gcalphotos/internal/calendar"
	"github.com/gcalphotos/gcalphotos/internal/format"
	"github.com/gcalphotos/gcalphotos/internal/photos"
)

// handler binds a tool to its implementation and the phrase used in failure
// envelopes.
type handler struct {
	phrase string
	run    func(ctx context.Context, s *Session, args map[string]any) (string, error)
}

// handlerTable returns the handlers for every tool in the default catalog,
// keyed by tool name. Arguments arrive already validated and normalized.
func handlerTable() map[string]handler {
	return map[string]handler{
		"create_calendar_event": {
			phrase: "Error creating calendar event",
			run:    handleCreateEvent,
		},
		"get_calendar_events": {
			phrase: "Error getting calendar events",
			run:    handleGetEvents,
		},
		"update_calendar_event": {
			phrase: "Error updating calendar event",
			run:    handleUpdateEvent,
		},
		"delete_calendar_event": {
			phrase: "Error deleting calendar event",
			run:    handleDeleteEvent,
		},
		"get_photos": {
			phrase: "Error getting photos",
			run:    handleGetPhotos,
		},
		"search_photos": {
			phrase: "Error searching photos",
			run:    handleSearchPhotos,
		},
		"get_photo_download_url": {
			phrase: "Error getting photo download URL",
			run:    handleDownloadURL,
		},
	}
}

func handleCreateEvent(ctx context.Context, s *Session, args map[string]any) (string, error) {
	input := calendar.EventInput{
		CalendarID:  argString(args, "calendar_id"),
		Summary:     argString(args, "summary"),
		StartTime:   argString(args, "start_time"),
		EndTime:     argString(args, "end_time"),
		Description: argString(args, "description"),
		Location:    argString(args, "location"),
	}

	eventID, err := s.Calendar.CreateEvent(ctx, input)
	if err != nil {
		return "", err
	}

	return format.CreatedEvent(eventID, input), nil
}

func handleGetEvents(ctx context.Context, s *Session, args map[string]any) (string, error) {
	events, err := s.Calendar.ListUpcoming(ctx, argString(args, "calendar_id"), argInt(args, "max_results"))
	if err != nil {
		return "", err
	}

	return format.EventList(events), nil
}

func handleUpdateEvent(ctx context.Context, s *Session, args map[string]any) (string, error) {
	patch := calendar.EventPatch{
		CalendarID:  argString(args, "calendar_id"),
		EventID:     argString(args, "event_id"),
		Summary:     argStringPtr(args, "summary"),
		StartTime:   argStringPtr(args, "start_time"),
		EndTime:     argStringPtr(args, "end_time"),
		Description: argStringPtr(args, "description"),
		Location:    argStringPtr(args, "location"),
	}

	updates := describePatch(patch)
	if len(updates) == 0 {
		return "", &ValidationError{
			Tool:   "update_calendar_event",
			Field:  "event_id",
			Reason: "at least one field to update must be provided",
		}
	}

	if _, err := s.Calendar.UpdateEvent(ctx, patch); err != nil {
		return "", err
	}

	return format.UpdatedEvent(patch.EventID, updates), nil
}

// describePatch names the changes a patch makes, for the response text.
func describePatch(patch calendar.EventPatch) []string {
	var updates []string
	describe := func(p *string, field string) {
		if p == nil {
			return
		}
		if *p == "" {
			updates = append(updates, field+" cleared")
		} else {
			updates = append(updates, field+" updated")
		}
	}

	describe(patch.Summary, "Title")
	describe(patch.StartTime, "Start time")
	describe(patch.EndTime, "End time")
	describe(patch.Description, "Description")
	describe(patch.Location, "Location")

	return updates
}

func handleDeleteEvent(ctx context.Context, s *Session, args map[string]any) (string, error) {
	eventID := argString(args, "event_id")
	if err := s.Calendar.DeleteEvent(ctx, argString(args, "calendar_id"), eventID); err != nil {
		return "", err
	}

	return format.DeletedEvent(eventID), nil
}

func handleGetPhotos(ctx context.Context, s *Session, args map[string]any) (string, error) {
	items, err := s.Photos.List(ctx, argInt(args, "page_size"))
	if err != nil {
		return "", err
	}

	return format.PhotoList(items), nil
}

func handleSearchPhotos(ctx context.Context, s *Session, args map[string]any) (string, error) {
	startRaw := argString(args, "start_date")
	endRaw := argString(args, "end_date")
	mediaType := argString(args, "media_type")

	query := photos.SearchQuery{
		MediaType: mediaType,
		PageSize:  argInt(args, "page_size"),
	}

	if startRaw != "" {
		day, err := photos.ParseDay(startRaw)
		if err != nil {
			return "", err
		}
		query.StartDate = &day
	}
	if endRaw != "" {
		day, err := photos.ParseDay(endRaw)
		if err != nil {
			return "", err
		}
		query.EndDate = &day
	}

	items, err := s.Photos.Search(ctx, query)
	if err != nil {
		return "", err
	}

	return format.SearchResults(items, format.SearchCriteria(startRaw, endRaw, mediaType)), nil
}

func handleDownloadURL(ctx context.Context, s *Session, args map[string]any) (string, error) {
	photoID := argString(args, "photo_id")
	url, err := s.Photos.DownloadURL(ctx, photoID)
	if err != nil {
		return "", err
	}

	return format.DownloadURL(photoID, url), nil
}

// argString returns the string argument or "" when absent.
func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// argStringPtr returns a pointer to the string argument, or nil when absent.
// The distinction carries patch semantics: nil means "leave unchanged".
func argStringPtr(args map[string]any, key string) *string {
	raw, ok := args[key]
	if !ok {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil
	}
	return &s
}

// argInt returns the integer argument or 0 when absent.
func argInt(args map[string]any, key string) int64 {
	n, _ := args[key].(int64)
	return n
}
