package core

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Context keys for pipeline options
type contextKey string

const (
	loggerKey         contextKey = "logger"
	suppressOutputKey contextKey = "suppressOutput"
)

// withLogger attaches a log entry carrying run-scoped fields to the context
func withLogger(ctx context.Context, entry *log.Entry) context.Context {
	return context.WithValue(ctx, loggerKey, entry)
}

// loggerFrom returns the run-scoped log entry, or the standard logger
func loggerFrom(ctx context.Context) *log.Entry {
	if entry, ok := ctx.Value(loggerKey).(*log.Entry); ok && entry != nil {
		return entry
	}
	return log.NewEntry(log.StandardLogger())
}

// WithSuppressOutput disables progress bars and summaries, for callers that own stdout
func WithSuppressOutput(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressOutputKey, true)
}

// shouldSuppressOutput returns whether user-facing output should be suppressed
func shouldSuppressOutput(ctx context.Context) bool {
	suppress, ok := ctx.Value(suppressOutputKey).(bool)
	return ok && suppress
}
