package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/flemzord/recall/internal/index"
)

func newTestServer(t *testing.T, initialized bool) (*Server, *index.Repository) {
	t.Helper()

	repo := index.NewRepository(filepath.Join(t.TempDir(), "index.json"))
	if initialized {
		if _, err := repo.Init(time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)); err != nil {
			t.Fatalf("init: %v", err)
		}
	}
	return NewServer("127.0.0.1:0", repo, NewMetrics(), nil), repo
}

func TestHealth_OK(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want %q", resp.Status, "ok")
	}
	if resp.IndexPath == "" {
		t.Error("index_path missing")
	}
}

func TestHealth_DegradedWhenIndexMissing(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "degraded" || resp.Error == "" {
		t.Errorf("resp = %+v, want degraded with error", resp)
	}
}

func TestStatus_ReportsIndexAndMetrics(t *testing.T) {
	t.Parallel()

	s, repo := newTestServer(t, true)

	doc, err := repo.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	now := time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC)
	if _, err := doc.CreateSession("work", now); err != nil {
		t.Fatal(err)
	}
	if _, err := doc.Append("work", index.AppendParams{Question: "q", Answer: "a", Now: now}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	s.metrics.RecordAppend()
	s.metrics.RecordQuery()
	s.metrics.RecordExtraction(2*time.Second, nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp StatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Sessions != 1 {
		t.Errorf("sessions = %d, want 1", resp.Sessions)
	}
	if resp.Index == nil || resp.Index.TotalPairs != 1 {
		t.Errorf("index = %+v, want 1 pair", resp.Index)
	}
	if resp.Metrics.Appends != 1 || resp.Metrics.Queries != 1 {
		t.Errorf("metrics = %+v", resp.Metrics)
	}
	if resp.Metrics.AvgExtraction != 2*time.Second {
		t.Errorf("avg extraction = %v, want 2s", resp.Metrics.AvgExtraction)
	}
}

func TestStatus_UptimeInSeconds(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, true)
	s.startedAt = time.Now().Add(-90 * time.Second)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	var resp StatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// The field carries whole seconds, not nanoseconds.
	if resp.UptimeSeconds < 90 || resp.UptimeSeconds > 100 {
		t.Errorf("uptime_seconds = %d, want ~90", resp.UptimeSeconds)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, true)
	s.metrics.RecordExtraction(time.Second, nil)
	s.metrics.RecordExtraction(time.Second, http.ErrBodyNotAllowed)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	body := rr.Body.String()
	for _, want := range []string{
		"recall_extraction_runs_total 2",
		"recall_extraction_failures_total 1",
		"recall_appends_total 0",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMetricsSnapshot_FailureCount(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.RecordExtraction(time.Second, nil)
	m.RecordExtraction(3*time.Second, http.ErrBodyNotAllowed)

	snap := m.Snapshot()
	if snap.ExtractionRuns != 2 || snap.ExtractionFailures != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.AvgExtraction != 2*time.Second {
		t.Errorf("avg = %v, want 2s", snap.AvgExtraction)
	}
}
