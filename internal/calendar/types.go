package calendar

import (
	calendar "google.golang.org/api/calendar/v3"
)

// Event is the subset of a calendar event surfaced through tools. Start and
// End carry the wire values unchanged: an RFC3339 dateTime for timed events
// or a YYYY-MM-DD date for all-day events. Rendering decides how to display
// them.
type Event struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       string
	End         string
}

// EventInput describes a new event. Summary, StartTime and EndTime are
// required; the rest may be empty.
type EventInput struct {
	CalendarID  string
	Summary     string
	StartTime   string
	EndTime     string
	Description string
	Location    string
}

// EventPatch describes a partial update. Nil fields are left unchanged; a
// non-nil pointer to an empty string clears the field.
type EventPatch struct {
	CalendarID  string
	EventID     string
	Summary     *string
	StartTime   *string
	EndTime     *string
	Description *string
	Location    *string
}

func fromAPIEvent(ev *calendar.Event) Event {
	out := Event{
		ID:          ev.Id,
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
	}

	if ev.Start != nil {
		out.Start = ev.Start.DateTime
		if out.Start == "" {
			out.Start = ev.Start.Date
		}
	}
	if ev.End != nil {
		out.End = ev.End.DateTime
		if out.End == "" {
			out.End = ev.End.Date
		}
	}

	return out
}

// buildEvent converts an EventInput into the API representation. Timestamps
// are sent as-is with an explicit UTC timezone.
func buildEvent(input EventInput) *calendar.Event {
	return &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.StartTime,
			TimeZone: "UTC",
		},
		End: &calendar.EventDateTime{
			DateTime: input.EndTime,
			TimeZone: "UTC",
		},
	}
}

// mergePatch applies patch to a fetched event in place. Cleared string
// fields are added to ForceSendFields so the empty value survives JSON
// marshalling.
func mergePatch(existing *calendar.Event, patch EventPatch) {
	setString := func(dst *string, src *string, field string) {
		if src == nil {
			return
		}
		*dst = *src
		if *src == "" {
			existing.ForceSendFields = append(existing.ForceSendFields, field)
		}
	}

	setString(&existing.Summary, patch.Summary, "Summary")
	setString(&existing.Description, patch.Description, "Description")
	setString(&existing.Location, patch.Location, "Location")

	if patch.StartTime != nil {
		existing.Start = &calendar.EventDateTime{DateTime: *patch.StartTime, TimeZone: "UTC"}
	}
	if patch.EndTime != nil {
		existing.End = &calendar.EventDateTime{DateTime: *patch.EndTime, TimeZone: "UTC"}
	}
}
