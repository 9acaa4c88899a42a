package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// PrimaryCalendarID addresses the authenticated user's main calendar.
const PrimaryCalendarID = "primary"

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time

	// TimeZone is the IANA zone name sent with start and end, e.g. "Asia/Kolkata".
	TimeZone string
}

// EventSummary represents a simplified calendar event
type EventSummary struct {
	ID       string
	Summary  string
	Start    time.Time
	End      time.Time
	TimeZone string
	Status   string
	HTMLLink string
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	summary := EventSummary{
		ID:       event.Id,
		Summary:  event.Summary,
		Status:   event.Status,
		HTMLLink: event.HtmlLink,
	}

	if event.Start != nil {
		summary.Start = parseEventTime(event.Start)
		summary.TimeZone = event.Start.TimeZone
	}
	if event.End != nil {
		summary.End = parseEventTime(event.End)
	}

	return summary
}

func parseEventTime(edt *calendar.EventDateTime) time.Time {
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t
		}
	} else if edt.Date != "" {
		if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}
