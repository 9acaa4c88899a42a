package calendar_tools

import (
	"context"
	"time"

	"github.com/teemow/assistant/internal/calendar"
	"github.com/teemow/assistant/internal/llm"
	"github.com/teemow/assistant/internal/tools/common"
)

// EventCreator inserts calendar events.
type EventCreator interface {
	CreateEvent(ctx context.Context, calendarID string, input calendar.EventInput) (*calendar.EventSummary, error)
}

// DateParser resolves natural language date phrases in its location.
type DateParser interface {
	Parse(phrase string, now time.Time) (time.Time, bool)
	Location() *time.Location
}

// Deps are the collaborators of the calendar tools.
type Deps struct {
	Model    llm.Model
	Calendar EventCreator

	// Dates also decides the zone events are created in.
	Dates DateParser

	// Now returns the reference time for relative phrases (default: time.Now).
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Tools returns the calendar tools.
func Tools(d Deps) []common.Tool {
	return []common.Tool{
		{
			Name:        CreateEventToolName,
			Description: "Create a Google Calendar event from natural language.",
			Handler:     CreateEventHandler(d),
		},
	}
}
