// Package calendar_tools provides the calendar tool of the assistant.
//
// create_calendar_event takes a free-text sentence, asks the model for the
// date/time phrase and for a title, resolves the phrase into an absolute time
// and inserts a one hour event into the primary calendar.
package calendar_tools
