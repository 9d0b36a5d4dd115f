// Package logging assembles the structured slog loggers nestadmin uses.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so API calls can tag log lines with
// their request identifier. Logs go to stderr by default so tables and JSON
// written to stdout stay clean. A no-op logger is provided for tests and
// wiring code that cannot fail.
package logging
