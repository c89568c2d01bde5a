// Package format renders tool results as the plain-text payloads returned to
// the MCP host. All user-visible wording lives here so handlers stay free of
// string assembly.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/gcalphotos/gcalphotos/internal/calendar"
	"github.com/gcalphotos/gcalphotos/internal/photos"
)

// maxDescriptionLen bounds description text in listings.
const maxDescriptionLen = 100

// timestampLayout is the display form for parseable wire timestamps.
const timestampLayout = "2006-01-02 15:04:05 UTC"

// Timestamp renders an RFC3339 wire value as a fixed human-readable form.
// Values that do not parse (all-day dates, malformed data) are passed
// through unchanged rather than dropped.
func Timestamp(wire string) string {
	t, err := time.Parse(time.RFC3339, wire)
	if err != nil {
		return wire
	}
	return t.UTC().Format(timestampLayout)
}

// Truncate shortens s to at most n characters, appending "..." when it cuts.
// The count is in runes, not bytes, so multibyte text is never cut
// mid-character.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// CreatedEvent renders the result of a successful event creation.
func CreatedEvent(eventID string, input calendar.EventInput) string {
	return fmt.Sprintf("✅ Calendar event created successfully!\nEvent ID: %s\nTitle: %s\nStart: %s\nEnd: %s",
		eventID, input.Summary, Timestamp(input.StartTime), Timestamp(input.EndTime))
}

// EventList renders upcoming events. An empty list gets a fixed sentence so
// the host never sees a bare header with nothing under it.
func EventList(events []calendar.Event) string {
	if len(events) == 0 {
		return "📅 No upcoming events found in your calendar."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Found %d upcoming calendar events:\n\n", len(events))

	for i, ev := range events {
		summary := ev.Summary
		if summary == "" {
			summary = "(no title)"
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, summary)
		fmt.Fprintf(&b, "   ID: %s\n", ev.ID)
		fmt.Fprintf(&b, "   Start: %s\n", Timestamp(ev.Start))
		if ev.Location != "" {
			fmt.Fprintf(&b, "   Location: %s\n", ev.Location)
		}
		if ev.Description != "" {
			fmt.Fprintf(&b, "   Description: %s\n", Truncate(ev.Description, maxDescriptionLen))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// UpdatedEvent renders the result of a successful event update, listing the
// fields that were changed.
func UpdatedEvent(eventID string, updates []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Calendar event updated successfully!\nEvent ID: %s\nUpdates made:", eventID)
	for _, u := range updates {
		fmt.Fprintf(&b, "\n  • %s", u)
	}
	return b.String()
}

// DeletedEvent renders the result of a successful event deletion.
func DeletedEvent(eventID string) string {
	return fmt.Sprintf("✅ Calendar event deleted successfully!\nEvent ID: %s", eventID)
}

// PhotoList renders recent photos. An empty list gets a fixed sentence.
func PhotoList(items []photos.Item) string {
	if len(items) == 0 {
		return "📸 No photos found in your Google Photos library."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📸 Found %d photos in your Google Photos library:\n\n", len(items))
	writePhotoEntries(&b, items)

	return strings.TrimRight(b.String(), "\n")
}

// SearchResults renders photo search results, echoing the applied criteria.
func SearchResults(items []photos.Item, criteria string) string {
	if len(items) == 0 {
		return fmt.Sprintf("📸 No photos found matching search criteria (%s).", criteria)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📸 Found %d photos matching search criteria (%s):\n\n", len(items), criteria)
	writePhotoEntries(&b, items)

	return strings.TrimRight(b.String(), "\n")
}

func writePhotoEntries(b *strings.Builder, items []photos.Item) {
	for i, item := range items {
		filename := item.Filename
		if filename == "" {
			filename = "(no filename)"
		}
		fmt.Fprintf(b, "%d. %s\n", i+1, filename)
		fmt.Fprintf(b, "   ID: %s\n", item.ID)
		if item.MimeType != "" {
			fmt.Fprintf(b, "   Type: %s\n", item.MimeType)
		}
		if item.CreationTime != "" {
			fmt.Fprintf(b, "   Created: %s\n", Timestamp(item.CreationTime))
		}
		if item.CameraMake != "" || item.CameraModel != "" {
			fmt.Fprintf(b, "   Camera: %s\n", strings.TrimSpace(item.CameraMake+" "+item.CameraModel))
		}
		b.WriteString("\n")
	}
}

// SearchCriteria describes the filters applied to a photo search, for
// echoing back in results. Raw argument values are shown, not their parsed
// forms.
func SearchCriteria(startDate, endDate, mediaType string) string {
	var parts []string
	if startDate != "" {
		parts = append(parts, "after "+startDate)
	}
	if endDate != "" {
		parts = append(parts, "before "+endDate)
	}
	if mediaType != "" {
		parts = append(parts, "type: "+mediaType)
	}
	if len(parts) == 0 {
		return "no filters"
	}
	return strings.Join(parts, ", ")
}

// DownloadURL renders a resolved photo download URL with its expiry caveat.
func DownloadURL(photoID, url string) string {
	return fmt.Sprintf("📸 Download URL for photo %s:\n\n🔗 %s\n\n⚠️ Note: This URL expires after approximately 1 hour.", photoID, url)
}

// Failure renders a failure envelope. The message never includes stack
// traces, only the operation phrase and the error text.
func Failure(phrase string, err error) string {
	return fmt.Sprintf("❌ %s: %v", phrase, err)
}

// UnknownTool renders the failure envelope for an unregistered tool name,
// listing every tool that is available.
func UnknownTool(name string, known []string) string {
	return fmt.Sprintf("❌ Unknown tool: %s\nAvailable tools: %s", name, strings.Join(known, ", "))
}
