package google

import (
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
)

// DefaultOAuthScopes are the scopes requested during interactive authorization.
//
// The scopes provide access to:
//   - Google Calendar: create events
//   - Gmail: read messages and send mail
var DefaultOAuthScopes = []string{
	calendar.CalendarScope,
	gmail.GmailReadonlyScope,
	gmail.GmailSendScope,
}
