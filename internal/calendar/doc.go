// Package calendar provides a client for creating Google Calendar events.
//
// Example usage:
//
//	httpClient, err := manager.HTTPClient(ctx)
//	if err != nil {
//	    return err
//	}
//	client, err := calendar.NewClient(ctx, httpClient)
//	if err != nil {
//	    return err
//	}
//
//	event, err := client.CreateEvent(ctx, calendar.PrimaryCalendarID, calendar.EventInput{
//	    Summary:  "Dentist",
//	    Start:    start,
//	    End:      start.Add(time.Hour),
//	    TimeZone: "Asia/Kolkata",
//	})
package calendar
