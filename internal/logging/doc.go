// Package logging holds the slog helpers shared by the assistant.
//
// Diagnostics go to stderr so stdout carries only the conversation. Loggers
// are tagged per backend with WithService; records then add the tool, model
// or Google API operation they concern:
//
//	logger := logging.WithService(slog.Default(), "gmail")
//	logger.Info("email sent", logging.Recipient(to))
//
// Recipients are logged as hashes and OAuth tokens by length only.
package logging
