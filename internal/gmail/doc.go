// Package gmail provides a client for reading and sending mail through the Gmail API.
//
// The client lists messages by Gmail search query, fetches full messages with
// their decoded plain text and HTML bodies, and sends plain text mail built
// in RFC 2822 format. Non-ASCII subjects are encoded per RFC 2047.
//
// Example usage:
//
//	client, err := gmail.NewClient(ctx, httpClient)
//	if err != nil {
//	    return err
//	}
//
//	unread, err := client.ListMessages(ctx, "is:unread newer_than:2d", 5)
//	if err != nil {
//	    return err
//	}
//
//	id, err := client.SendEmail(ctx, &gmail.EmailMessage{
//	    To:      "recipient@example.com",
//	    Subject: "Hello",
//	    Body:    "This is a test email",
//	})
package gmail
