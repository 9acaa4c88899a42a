// Package gmail_tools provides the mail tools of the assistant:
//
//   - read_unread_emails: digest of up to 5 unread messages from the last 2 days
//   - get_and_summarize_latest_email: the newest message with a model summary
//   - send_email: sends "recipient | subject | message"
//
// All tools go through a Mailbox, which the Gmail client implements.
package gmail_tools
