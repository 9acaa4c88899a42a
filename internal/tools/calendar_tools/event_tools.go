package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teemow/assistant/internal/calendar"
	"github.com/teemow/assistant/internal/llm"
	"github.com/teemow/assistant/internal/tools/common"
)

// CreateEventToolName is the router name of the event creation tool.
const CreateEventToolName = "create_calendar_event"

const (
	// MsgDateNotUnderstood is returned when no date or time can be parsed.
	MsgDateNotUnderstood = "I couldn't understand the date/time."

	eventDuration = time.Hour

	// replyTimeLayout renders e.g. "20 Oct 2026 at 05:00 PM".
	replyTimeLayout = "02 Jan 2006 at 03:04 PM"
)

func dateTimePrompt(text string) string {
	return fmt.Sprintf("\nExtract only the date and time from this sentence.\nReturn only the date and time phrase.\n\nSentence: \"%s\"\n", text)
}

func titlePrompt(text string) string {
	return fmt.Sprintf("\nRemove date and time words from this sentence.\nReturn only the event title.\n\nSentence: \"%s\"\n", text)
}

// CreateEventHandler creates a one hour event on the primary calendar from a
// sentence like "dentist appointment tomorrow at 5pm".
func CreateEventHandler(d Deps) common.Handler {
	return func(ctx context.Context, text string) (string, error) {
		text = strings.TrimSpace(text)

		phrase, err := llm.Ask(ctx, d.Model, dateTimePrompt(text))
		if err != nil {
			return "", fmt.Errorf("failed to extract date: %w", err)
		}

		start, ok := d.Dates.Parse(common.CleanModelText(phrase), d.now())
		if !ok {
			return MsgDateNotUnderstood, nil
		}
		loc := d.Dates.Location()
		start = start.In(loc)

		title, err := llm.Ask(ctx, d.Model, titlePrompt(text))
		if err != nil {
			return "", fmt.Errorf("failed to extract title: %w", err)
		}
		title = common.CleanModelText(title)
		if title == "" {
			title = text
		}

		_, err = d.Calendar.CreateEvent(ctx, calendar.PrimaryCalendarID, calendar.EventInput{
			Summary:  title,
			Start:    start,
			End:      start.Add(eventDuration),
			TimeZone: loc.String(),
		})
		if err != nil {
			return "", fmt.Errorf("failed to create event: %w", err)
		}

		return fmt.Sprintf("%s scheduled for %s", title, start.Format(replyTimeLayout)), nil
	}
}
