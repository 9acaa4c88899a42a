package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/assistant/internal/gmail"
	"github.com/teemow/assistant/internal/llm"
	"github.com/teemow/assistant/internal/tools/common"
)

// Tool names.
const (
	ReadUnreadToolName      = "read_unread_emails"
	SummarizeLatestToolName = "get_and_summarize_latest_email"
	SendEmailToolName       = "send_email"
)

// Replies for outcomes that are not failures.
const (
	MsgNoUnread     = "No unread emails from last 2 days."
	MsgNoRecent     = "No recent emails found."
	MsgNoBody       = "Could not extract email body."
	MsgSendFormat   = "Format should be: recipient | subject | message"
	msgUnreadHeader = "Unread Emails:\n\n"
)

const (
	unreadQuery     = "is:unread newer_than:2d"
	recentQuery     = "newer_than:2d"
	maxUnread       = 5
	maxQuotedBody   = 1500
	separatorLength = 40
)

// ReadUnreadHandler lists up to five unread messages from the last two days.
// The input is ignored.
func ReadUnreadHandler(d Deps) common.Handler {
	return func(ctx context.Context, _ string) (string, error) {
		msgs, err := d.Mail.ListMessages(ctx, unreadQuery, maxUnread)
		if err != nil {
			return "", fmt.Errorf("failed to list unread emails: %w", err)
		}
		if len(msgs) == 0 {
			return MsgNoUnread, nil
		}
		if len(msgs) > maxUnread {
			msgs = msgs[:maxUnread]
		}

		separator := strings.Repeat("-", separatorLength)
		var b strings.Builder
		b.WriteString(msgUnreadHeader)
		for _, m := range msgs {
			fmt.Fprintf(&b, "Subject: %s\n", m.Subject)
			fmt.Fprintf(&b, "From: %s\n", m.From)
			fmt.Fprintf(&b, "Date: %s\n", m.Date)
			b.WriteString(separator)
			b.WriteString("\n")
		}
		return b.String(), nil
	}
}

func summaryPrompt(body string) string {
	return "\nSummarize this email clearly in 4 lines:\n\n" + body + "\n"
}

// SummarizeLatestHandler fetches the newest message of the last two days and
// reports it together with a model written summary. The input is ignored.
func SummarizeLatestHandler(d Deps) common.Handler {
	return func(ctx context.Context, _ string) (string, error) {
		msgs, err := d.Mail.ListMessages(ctx, recentQuery, 1)
		if err != nil {
			return "", fmt.Errorf("failed to list recent emails: %w", err)
		}
		if len(msgs) == 0 {
			return MsgNoRecent, nil
		}

		latest, err := d.Mail.GetMessage(ctx, msgs[0].ID)
		if err != nil {
			return "", fmt.Errorf("failed to fetch latest email: %w", err)
		}
		body := latest.Body()
		if body == "" {
			return MsgNoBody, nil
		}

		summary, err := llm.Ask(ctx, d.Model, summaryPrompt(body))
		if err != nil {
			return "", fmt.Errorf("failed to summarize email: %w", err)
		}

		var b strings.Builder
		b.WriteString("Email Details:\n")
		fmt.Fprintf(&b, "Subject: %s\n", latest.Subject)
		fmt.Fprintf(&b, "From: %s\n", latest.From)
		fmt.Fprintf(&b, "Date: %s\n", latest.Date)
		b.WriteString("\nEmail Content:\n")
		b.WriteString(head(body, maxQuotedBody))
		b.WriteString("\n\nSummary:\n")
		b.WriteString(summary)
		return b.String(), nil
	}
}

// SendEmailHandler sends "recipient | subject | message".
func SendEmailHandler(d Deps) common.Handler {
	return func(ctx context.Context, input string) (string, error) {
		msg, ok := parseSendInput(input)
		if !ok {
			return MsgSendFormat, nil
		}
		if _, err := d.Mail.SendEmail(ctx, msg); err != nil {
			return "", fmt.Errorf("failed to send email: %w", err)
		}
		return "Email sent to " + msg.To, nil
	}
}

// parseSendInput splits on '|' into exactly three trimmed fields. The
// recipient must not be empty; subject and message may be. Recipient and
// subject are single header lines and may not contain line breaks.
func parseSendInput(input string) (*gmail.EmailMessage, bool) {
	parts := strings.Split(input, "|")
	if len(parts) != 3 {
		return nil, false
	}
	msg := &gmail.EmailMessage{
		To:      strings.TrimSpace(parts[0]),
		Subject: strings.TrimSpace(parts[1]),
		Body:    strings.TrimSpace(parts[2]),
	}
	if msg.To == "" || strings.ContainsAny(msg.To+msg.Subject, "\r\n") {
		return nil, false
	}
	return msg, true
}

// head returns the first n runes of s.
func head(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
