package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/assistant/internal/instrumentation"
	"github.com/teemow/assistant/internal/logging"
)

// Client wraps the Google Calendar service
type Client struct {
	svc     *calendar.Service
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewClient creates a Calendar client that authenticates through httpClient,
// typically the one returned by google.Manager.HTTPClient. Extra options are
// appended after the HTTP client, which lets tests point the client at a fake
// endpoint.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	allOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := calendar.NewService(ctx, allOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{
		svc:    svc,
		logger: logging.WithService(slog.Default(), instrumentation.ServiceCalendar),
	}, nil
}

// SetLogger replaces the client's logger.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logging.WithService(logger, instrumentation.ServiceCalendar)
}

// SetMetrics sets the recorder for Google API metrics.
func (c *Client) SetMetrics(metrics *instrumentation.Metrics) {
	c.metrics = metrics
}

// CreateEvent creates a new timed calendar event
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error) {
	if input.Summary == "" {
		return nil, errors.New("event summary must not be empty")
	}
	if !input.End.After(input.Start) {
		return nil, fmt.Errorf("event end %s must be after start %s", input.End.Format(time.RFC3339), input.Start.Format(time.RFC3339))
	}
	if input.TimeZone == "" {
		input.TimeZone = "UTC"
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationCreate)
	defer span.End()
	start := time.Now()

	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, instrumentation.OperationCreate, status, time.Since(start))

	if err != nil {
		c.logger.Warn("event insert failed", logging.Operation("events.insert"), logging.Err(err))
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	c.logger.Debug("event created", slog.String("event_id", summary.ID))
	return &summary, nil
}
