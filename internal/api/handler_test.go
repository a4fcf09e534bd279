package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rajasatyajit/QuakeAlert/internal/pipeline"
)

type stubLoop struct {
	running bool
	stats   pipeline.Stats
}

func (s *stubLoop) IsRunning() bool          { return s.running }
func (s *stubLoop) Snapshot() pipeline.Stats { return s.stats }

func newTestRouter(loop *stubLoop) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(loop, "test", "now", "abc123").RegisterRoutes(r)
	return r
}

func TestHealthHandler(t *testing.T) {
	r := newTestRouter(&stubLoop{running: true})

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestReadinessReflectsLoopState(t *testing.T) {
	tests := []struct {
		name     string
		running  bool
		wantCode int
	}{
		{"running", true, http.StatusOK},
		{"stopped", false, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubLoop{running: tt.running})

			req := httptest.NewRequest(http.MethodGet, "/v1/health/ready", nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}

func TestStatusHandler(t *testing.T) {
	loop := &stubLoop{
		running: true,
		stats: pipeline.Stats{
			Running:        true,
			LastTickAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			LastTickStatus: "ok",
			TicksTotal:     7,
			EventsSeen:     12,
			EventsNotified: 3,
			DedupSize:      9,
		},
	}
	r := newTestRouter(loop)

	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got pipeline.Stats
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.TicksTotal != 7 || got.EventsNotified != 3 || got.DedupSize != 9 {
		t.Errorf("unexpected stats: %+v", got)
	}
	if got.LastTickStatus != "ok" {
		t.Errorf("expected last tick status ok, got %q", got.LastTickStatus)
	}
}

func TestVersionHandler(t *testing.T) {
	r := newTestRouter(&stubLoop{running: true})

	req := httptest.NewRequest(http.MethodGet, "/v1/version", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["version"] != "test" || body["git_commit"] != "abc123" {
		t.Errorf("unexpected version payload: %v", body)
	}
}
