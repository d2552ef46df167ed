package observability

import (
	"testing"
	"time"

	"github.com/spec-kit/apply-loan/internal/config"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/v1/loan/quote", "POST", 200, time.Millisecond)
	m.RecordRequest("/api/v1/loan/quote", "POST", 200, time.Millisecond)
	m.RecordError("/api/v1/loan/session", "GET", "NOT_FOUND")
	m.RecordSubmission("completed")

	snap := m.Snapshot()
	if snap.Requests["/api/v1/loan/quote|POST|200"] != 2 {
		t.Errorf("unexpected request counts %v", snap.Requests)
	}
	if snap.Errors["/api/v1/loan/session|GET|NOT_FOUND"] != 1 {
		t.Errorf("unexpected error counts %v", snap.Errors)
	}
	if snap.Submissions["completed"] != 1 {
		t.Errorf("unexpected submission counts %v", snap.Submissions)
	}

	snap.Submissions["completed"] = 99
	if m.Snapshot().Submissions["completed"] != 1 {
		t.Error("snapshot must not alias internal state")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordError("/", "GET", "X")
	m.RecordSubmission("failed")
	if snap := m.Snapshot(); snap.Requests != nil {
		t.Error("expected empty snapshot")
	}
}

func TestNewLoggerFallsBackOnBadLevel(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "verbose"})
	if err != nil {
		t.Fatalf("NewLogger error: %v", err)
	}
	_ = logger.Sync()
}
