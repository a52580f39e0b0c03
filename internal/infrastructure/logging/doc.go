// Package logging provides structured logging for the address book service.
//
// This package wraps Go's standard log/slog package so every component logs
// the same way:
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("contact added", "book", "family", "contact", "Mom")
//
// Contact phone numbers are personal data; log names and book names only.
package logging
