// Package logging assembles structured slog loggers and formatting helpers
// used across autosub.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context-aware helpers that tag log lines with the input file, pipeline
// stage, and run ID. A no-op logger is provided for tests and wiring code
// that cannot fail.
package logging
