package metrics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestClassifyDBError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{errors.New(`pq: duplicate key value violates unique constraint "users_pkey"`), "duplicate"},
		{errors.New("UNIQUE constraint failed: hashtags.name"), "duplicate"},
		{errors.New("sql: no rows in result set"), "not_found"},
		{fmt.Errorf("get article: %w", sql.ErrNoRows), "not_found"},
		{fmt.Errorf("list: %w", context.Canceled), "timeout"},
		{errors.New("context deadline exceeded"), "timeout"},
		{errors.New("FOREIGN KEY constraint failed"), "foreign_key"},
		{errors.New("CHECK constraint failed"), "constraint"},
		{errors.New("something else"), "other"},
	}

	for _, tt := range tests {
		if got := classifyDBError(tt.err); got != tt.want {
			t.Errorf("classifyDBError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestRecordDBOperation(t *testing.T) {
	before := testutil.ToFloat64(DBOperations.WithLabelValues("metrics_test", "get", "error"))
	RecordDBOperation("metrics_test", "get", time.Millisecond, -1, errors.New("sql: no rows in result set"))
	after := testutil.ToFloat64(DBOperations.WithLabelValues("metrics_test", "get", "error"))

	if after-before != 1 {
		t.Errorf("error counter increased by %v, want 1", after-before)
	}
	if got := testutil.ToFloat64(DBErrors.WithLabelValues("metrics_test", "get", "not_found")); got < 1 {
		t.Errorf("not_found errors = %v, want >= 1", got)
	}
}

func TestRecordHashtagCache(t *testing.T) {
	hits := testutil.ToFloat64(HashtagCache.WithLabelValues("hit"))
	misses := testutil.ToFloat64(HashtagCache.WithLabelValues("miss"))

	RecordHashtagCache(true)
	RecordHashtagCache(true)
	RecordHashtagCache(false)

	if got := testutil.ToFloat64(HashtagCache.WithLabelValues("hit")) - hits; got != 2 {
		t.Errorf("hits increased by %v, want 2", got)
	}
	if got := testutil.ToFloat64(HashtagCache.WithLabelValues("miss")) - misses; got != 1 {
		t.Errorf("misses increased by %v, want 1", got)
	}
}
