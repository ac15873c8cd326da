// Package logging provides structured logging for the observability core.
//
// The Logger wraps log/slog with level and format parsing plus automatic
// secret redaction. Credentials (password=, token=, secret= literals and
// Bearer tokens) are masked before any log line is written.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//		Level:         "info",
//		Format:        "json",
//		RedactSecrets: true,
//	})
//	logger.Info("request admitted", "key", key, "remaining", remaining)
//
// Components that receive no logger should use logging.NewNop().
package logging
