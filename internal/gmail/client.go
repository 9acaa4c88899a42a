package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/assistant/internal/instrumentation"
	"github.com/teemow/assistant/internal/logging"
)

const me = "me"

// Client wraps the Gmail Users service
type Client struct {
	svc     *gmail.UsersService
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewClient creates a Gmail client that authenticates through httpClient.
// Extra options are appended after the HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	allOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := gmail.NewService(ctx, allOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{
		svc:    svc.Users,
		logger: logging.WithService(slog.Default(), instrumentation.ServiceGmail),
	}, nil
}

// SetLogger replaces the client's logger.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logging.WithService(logger, instrumentation.ServiceGmail)
}

// SetMetrics sets the recorder for Google API metrics.
func (c *Client) SetMetrics(metrics *instrumentation.Metrics) {
	c.metrics = metrics
}

// observe wraps one API call in a span and records its outcome.
func (c *Client) observe(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGmail, operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceGmail, operation, status, time.Since(start))
	return err
}

// ListMessages returns up to maxResults messages matching the Gmail search
// query, newest first, with Subject, From and Date headers filled in.
func (c *Client) ListMessages(ctx context.Context, query string, maxResults int64) ([]*MessageSummary, error) {
	var refs []*gmail.Message
	err := c.observe(ctx, instrumentation.OperationList, func(ctx context.Context) error {
		res, err := c.svc.Messages.List(me).Q(query).MaxResults(maxResults).Context(ctx).Do()
		if err != nil {
			return err
		}
		refs = res.Messages
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	// MaxResults is only a page size hint.
	if int64(len(refs)) > maxResults {
		refs = refs[:maxResults]
	}

	summaries := make([]*MessageSummary, 0, len(refs))
	for _, ref := range refs {
		var msg *gmail.Message
		err := c.observe(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
			var err error
			msg, err = c.svc.Messages.Get(me, ref.Id).
				Format("metadata").
				MetadataHeaders("Subject", "From", "Date").
				Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", ref.Id, err)
		}
		summaries = append(summaries, toSummary(msg))
	}

	c.logger.Debug("listed messages", slog.Int("count", len(summaries)))
	return summaries, nil
}

// GetMessage fetches a full message including its decoded bodies.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*MessageSummary, error) {
	var msg *gmail.Message
	err := c.observe(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		msg, err = c.svc.Messages.Get(me, messageID).Format("full").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}

	summary := toSummary(msg)
	plain, htmlBody, err := extractBodies(msg.Payload)
	if err != nil {
		// Fall back to the snippet rather than failing the whole read.
		c.logger.Warn("could not decode message body", slog.String("message_id", messageID), logging.Err(err))
	}
	summary.Plain = plain
	summary.HTML = htmlBody
	return summary, nil
}

// SendEmail sends a plain text email and returns the sent message ID.
func (c *Client) SendEmail(ctx context.Context, msg *EmailMessage) (string, error) {
	if strings.TrimSpace(msg.To) == "" {
		return "", errors.New("recipient is required")
	}

	raw := base64.URLEncoding.EncodeToString([]byte(buildRFC2822(msg)))

	var sent *gmail.Message
	err := c.observe(ctx, instrumentation.OperationSend, func(ctx context.Context) error {
		var err error
		sent, err = c.svc.Messages.Send(me, &gmail.Message{Raw: raw}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Info("email sent", logging.Recipient(msg.To))
	return sent.Id, nil
}

// buildRFC2822 renders the message with the headers Gmail needs.
func buildRFC2822(msg *EmailMessage) string {
	var b strings.Builder
	b.WriteString("To: ")
	b.WriteString(headerValue(msg.To))
	b.WriteString("\r\n")
	b.WriteString("Subject: ")
	b.WriteString(encodeRFC2047(headerValue(msg.Subject)))
	b.WriteString("\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return b.String()
}

// lineBreaks folds CR and LF out of header values so a value cannot start
// a new header.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func headerValue(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(s))
}

// encodeRFC2047 encodes a header value containing non-ASCII characters.
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

func toSummary(msg *gmail.Message) *MessageSummary {
	return &MessageSummary{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Subject:  HeaderValue(msg, "Subject"),
		From:     HeaderValue(msg, "From"),
		Date:     HeaderValue(msg, "Date"),
		Snippet:  msg.Snippet,
	}
}
