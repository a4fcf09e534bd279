package metrics

import (
	"net/http"
	"time"
)

// Metrics interface for dependency injection
type Metrics interface {
	RecordTick(status string, duration time.Duration)
	RecordEventProcessed(outcome string)
	RecordDelivery(status string, attempts int)
	RecordDedupLookup(hit bool)
	SetDedupSize(count int)
	RecordHTTPRequest(method, path string, statusCode int, duration time.Duration)
	Handler() http.Handler
}

// NoOpMetrics provides a no-op implementation
type NoOpMetrics struct{}

func (m *NoOpMetrics) RecordTick(status string, duration time.Duration) {}
func (m *NoOpMetrics) RecordEventProcessed(outcome string)              {}
func (m *NoOpMetrics) RecordDelivery(status string, attempts int)       {}
func (m *NoOpMetrics) RecordDedupLookup(hit bool)                       {}
func (m *NoOpMetrics) SetDedupSize(count int)                           {}
func (m *NoOpMetrics) Handler() http.Handler                            { return http.NotFoundHandler() }

func (m *NoOpMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
}

// Global metrics instance
var globalMetrics Metrics = &NoOpMetrics{}

// Init initializes metrics (no-op for now, can be extended with Prometheus)
func Init() {
	// For now, keep using no-op metrics
}

// Handler returns the metrics handler
func Handler() http.Handler {
	return globalMetrics.Handler()
}

// RecordTick records one poll-loop iteration
func RecordTick(status string, duration time.Duration) {
	globalMetrics.RecordTick(status, duration)
}

// RecordEventProcessed records the terminal outcome of one event
func RecordEventProcessed(outcome string) {
	globalMetrics.RecordEventProcessed(outcome)
}

// RecordDelivery records a notification delivery attempt sequence
func RecordDelivery(status string, attempts int) {
	globalMetrics.RecordDelivery(status, attempts)
}

// RecordDedupLookup records a dedup membership query
func RecordDedupLookup(hit bool) {
	globalMetrics.RecordDedupLookup(hit)
}

// SetDedupSize sets the current processed-id set size
func SetDedupSize(count int) {
	globalMetrics.SetDedupSize(count)
}

// RecordHTTPRequest records an HTTP request's outcome and latency
func RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	globalMetrics.RecordHTTPRequest(method, path, statusCode, duration)
}
