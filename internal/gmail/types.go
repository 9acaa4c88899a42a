package gmail

import (
	"strings"

	"golang.org/x/net/html"
)

// MessageSummary is a received message with the headers and bodies the
// assistant reports on. Bodies are only populated by GetMessage.
type MessageSummary struct {
	ID       string
	ThreadID string
	Subject  string
	From     string
	Date     string
	Snippet  string

	// Plain is the decoded text/plain body, if the message has one.
	Plain string

	// HTML is the decoded text/html body, if the message has one.
	HTML string
}

// Body returns the best readable body: the plain text part, else the text
// content of the HTML part, else the snippet. It is empty when the message
// carries none of them.
func (m *MessageSummary) Body() string {
	if s := strings.TrimSpace(m.Plain); s != "" {
		return s
	}
	if m.HTML != "" {
		if s := strings.TrimSpace(htmlToText(m.HTML)); s != "" {
			return s
		}
	}
	return strings.TrimSpace(html.UnescapeString(m.Snippet))
}

// EmailMessage is an outgoing plain text email.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
}
