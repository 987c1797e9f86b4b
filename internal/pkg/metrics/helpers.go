package metrics

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"
)

// RecordDBOperation records database operation metrics consistently
// repo: repository name (e.g., "article", "comment", "hashtag")
// operation: operation name (e.g., "create", "get", "update", "delete", "list", "count")
// duration: time taken for the operation
// rowsAffected: number of rows affected/returned (-1 if not applicable)
// err: error from the operation (nil if successful)
func RecordDBOperation(repo, operation string, duration time.Duration, rowsAffected int64, err error) {
	ms := float64(duration.Milliseconds())
	DBDuration.WithLabelValues(repo, operation).Observe(ms)

	if rowsAffected >= 0 {
		DBRowsAffected.WithLabelValues(repo, operation).Observe(float64(rowsAffected))
	}

	status := "success"
	if err != nil {
		status = "error"
		DBErrors.WithLabelValues(repo, operation, classifyDBError(err)).Inc()
	}
	DBOperations.WithLabelValues(repo, operation, status).Inc()
}

// RecordDBRead records a read that returned rows.
func RecordDBRead(repo, operation string, duration time.Duration, rows int, err error) {
	RecordDBOperation(repo, operation, duration, -1, err)
	if err == nil {
		DBRowsReturned.WithLabelValues(repo, operation).Observe(float64(rows))
	}
}

// RecordServiceOperation records a service method call.
func RecordServiceOperation(service, method string, start time.Time, err error) {
	ServiceDuration.WithLabelValues(service, method).Observe(float64(time.Since(start).Milliseconds()))
	status := "success"
	if err != nil {
		status = "error"
	}
	ServiceOperations.WithLabelValues(service, method, status).Inc()
}

// RecordHTTPRequest records a finished HTTP request. path should be the
// route template, not the raw URL, to keep label cardinality bounded.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, path).Observe(float64(duration.Milliseconds()))
}

// RecordHashtagCache counts one lookup of the hashtag list cache.
func RecordHashtagCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	HashtagCache.WithLabelValues(result).Inc()
}

// classifyDBError categorizes database errors for metrics
func classifyDBError(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, sql.ErrNoRows):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "duplicate") || strings.Contains(errStr, "unique constraint"):
		return "duplicate"
	case strings.Contains(errStr, "not found") || strings.Contains(errStr, "no rows"):
		return "not_found"
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
		return "timeout"
	case strings.Contains(errStr, "connection") || strings.Contains(errStr, "connect"):
		return "connection"
	case strings.Contains(errStr, "foreign key") || strings.Contains(errStr, "fk_"):
		return "foreign_key"
	case strings.Contains(errStr, "constraint"):
		return "constraint"
	case strings.Contains(errStr, "deadlock"):
		return "deadlock"
	case strings.Contains(errStr, "syntax"):
		return "syntax"
	default:
		return "other"
	}
}
