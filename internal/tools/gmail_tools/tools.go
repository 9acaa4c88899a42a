package gmail_tools

import (
	"context"

	"github.com/teemow/assistant/internal/gmail"
	"github.com/teemow/assistant/internal/llm"
	"github.com/teemow/assistant/internal/tools/common"
)

// Mailbox reads and sends mail.
type Mailbox interface {
	ListMessages(ctx context.Context, query string, maxResults int64) ([]*gmail.MessageSummary, error)
	GetMessage(ctx context.Context, messageID string) (*gmail.MessageSummary, error)
	SendEmail(ctx context.Context, msg *gmail.EmailMessage) (string, error)
}

// Deps are the collaborators of the mail tools.
type Deps struct {
	Mail  Mailbox
	Model llm.Model
}

// Tools returns the mail tools in router order.
func Tools(d Deps) []common.Tool {
	return []common.Tool{
		{
			Name:        ReadUnreadToolName,
			Description: "List unread email subjects from last 2 days.",
			Handler:     ReadUnreadHandler(d),
		},
		{
			Name:        SendEmailToolName,
			Description: "Send an email. Input format: recipient | subject | message",
			Handler:     SendEmailHandler(d),
		},
		{
			Name:        SummarizeLatestToolName,
			Description: "Retrieve most recent email and summarize it.",
			Handler:     SummarizeLatestHandler(d),
		},
	}
}
