package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// Ensure NoOpMetrics methods do not panic and global functions delegate without error
func TestNoOpMetricsAndDelegates(t *testing.T) {
	m := &NoOpMetrics{}
	m.RecordTick("ok", time.Millisecond)
	m.RecordEventProcessed("notified")
	m.RecordDelivery("delivered", 1)
	m.RecordDedupLookup(true)
	m.SetDedupSize(3)
	m.RecordHTTPRequest("GET", "/x", 200, time.Millisecond)
	h := m.Handler()
	if h == nil {
		t.Fatalf("NoOp handler is nil")
	}

	// Delegates
	RecordTick("ok", time.Millisecond)
	RecordEventProcessed("duplicate")
	RecordDelivery("permanent_failure", 2)
	RecordDedupLookup(false)
	SetDedupSize(4)
	RecordHTTPRequest("GET", "/x", 200, time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code == 0 {
		t.Errorf("expected status set, got 0")
	}
}
