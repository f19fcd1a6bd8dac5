package tracking

import (
	"time"

	"github.com/fluentdb/fluentdb/logger"
)

// TrackDBOperation logs one executed statement with its duration and outcome.
// Statements slower than the configured threshold are logged at warn level,
// failures at error level, everything else at debug level. The SQL text is
// truncated to the configured maximum length and bindings are only included
// when parameter logging is enabled.
func TrackDBOperation(tc *Context, query string, args []any, start time.Time, rowsAffected int64, err error) {
	elapsed := time.Since(start)

	event := trackingEvent(tc, elapsed, err)
	event = event.
		Str("vendor", tc.Vendor).
		Str("query", truncateQuery(query, tc.Settings.MaxQueryLength())).
		Dur("elapsed", elapsed).
		Int64("rows_affected", rowsAffected)

	if tc.Settings.LogQueryParameters() && len(args) > 0 {
		event = event.Interface("bindings", args)
	}

	switch {
	case err != nil:
		event.Msg("Database statement failed")
	case elapsed >= tc.Settings.SlowQueryThreshold():
		event.Msg("Slow database statement")
	default:
		event.Msg("Database statement executed")
	}
}

func trackingEvent(tc *Context, elapsed time.Duration, err error) logger.LogEvent {
	switch {
	case err != nil:
		return tc.Logger.Error().Err(err)
	case elapsed >= tc.Settings.SlowQueryThreshold():
		return tc.Logger.Warn()
	default:
		return tc.Logger.Debug()
	}
}

// truncateQuery limits query text length for log output.
func truncateQuery(query string, maxLength int) string {
	if maxLength <= 0 || len(query) <= maxLength {
		return query
	}
	return query[:maxLength] + "..."
}
