package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPrometheusTextCounterAndGauge(t *testing.T) {
	r := newTestRegistry()
	c := r.Counter("http_requests_total", "Total HTTP requests", map[string]string{"route": "/api/courses", "method": "GET"})
	c.Inc(3)
	g := r.Gauge("active_connections", "Open connections", nil)
	g.Set(7)

	out := r.PrometheusText()

	wantLines := []string{
		"# HELP active_connections Open connections",
		"# TYPE active_connections gauge",
		"active_connections 7",
		"# HELP http_requests_total Total HTTP requests",
		"# TYPE http_requests_total counter",
		`http_requests_total{method="GET",route="/api/courses"} 3`,
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line+"\n") {
			t.Errorf("output missing line %q\ngot:\n%s", line, out)
		}
	}

	// Names are sorted, so the gauge block precedes the counter block.
	if strings.Index(out, "active_connections") > strings.Index(out, "http_requests_total") {
		t.Error("metric names not sorted in output")
	}
}

func TestPrometheusTextHistogram(t *testing.T) {
	r := newTestRegistry()
	h := r.Histogram("request_duration_ms", "Request latency", nil, []float64{1, 5, 10})
	for _, v := range []float64{0.5, 3, 7, 12} {
		h.Observe(v)
	}

	out := r.PrometheusText()

	wantLines := []string{
		"# TYPE request_duration_ms histogram",
		`request_duration_ms_bucket{le="1"} 1`,
		`request_duration_ms_bucket{le="5"} 2`,
		`request_duration_ms_bucket{le="10"} 3`,
		`request_duration_ms_bucket{le="+Inf"} 4`,
		"request_duration_ms_count 4",
		"request_duration_ms_sum 22.5",
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line+"\n") {
			t.Errorf("output missing line %q\ngot:\n%s", line, out)
		}
	}
}

func TestPrometheusTextTimerRendersAsHistogram(t *testing.T) {
	r := newTestRegistry()
	r.Timer("db_query_duration_ms", "Query latency", nil, []float64{100})

	out := r.PrometheusText()
	if !strings.Contains(out, "# TYPE db_query_duration_ms histogram\n") {
		t.Errorf("timer not exposed as histogram:\n%s", out)
	}
}

func TestJSONSnapshot(t *testing.T) {
	r := newTestRegistry()
	r.Counter("http_requests_total", "", nil).Inc(2)
	h := r.Histogram("latency_ms", "", nil, []float64{10, 100})
	for i := 1; i <= 100; i++ {
		h.Observe(float64(i))
	}

	snap := r.JSONSnapshot()
	if len(snap.Metrics) != 2 {
		t.Fatalf("snapshot has %d metrics, want 2", len(snap.Metrics))
	}

	byName := make(map[string]MetricSnapshot)
	for _, m := range snap.Metrics {
		byName[m.Name] = m
	}

	counter := byName["http_requests_total"]
	if counter.Value == nil || *counter.Value != 2 {
		t.Errorf("counter value = %v, want 2", counter.Value)
	}

	hist := byName["latency_ms"]
	if hist.Count != 100 {
		t.Errorf("histogram count = %d, want 100", hist.Count)
	}
	if hist.Percentiles["p90"] != 90 {
		t.Errorf("p90 = %v, want 90", hist.Percentiles["p90"])
	}
	if hist.Buckets["10"] != 10 {
		t.Errorf("bucket le=10 = %d, want 10", hist.Buckets["10"])
	}
}

func TestHandlerServesBothFormats(t *testing.T) {
	r := newTestRegistry()
	r.Counter("http_requests_total", "", nil).Inc(1)

	req := httptest.NewRequest(http.MethodGet, "/metrics?format=prometheus", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("prometheus format status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total 1") {
		t.Errorf("prometheus body missing series:\n%s", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics?format=json", nil)
	rec = httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("json format status = %d, want %d", rec.Code, http.StatusOK)
	}
	var snap Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("json body does not decode: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics?format=xml", nil)
	rec = httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown format status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRuntimeCollectorRegistersSeries(t *testing.T) {
	r := newTestRegistry()
	rc := NewRuntimeCollector(r, 0, nil)
	rc.Refresh()

	for _, name := range []string{
		"memory_heap_used_bytes",
		"memory_heap_total_bytes",
		"process_uptime_seconds",
		"goroutines_count",
		"sched_latency_seconds",
		"cpu_user_seconds_total",
	} {
		if r.Get(name, nil) == nil {
			t.Errorf("runtime series %q not registered", name)
		}
	}

	if g, ok := r.Get("goroutines_count", nil).(*Gauge); !ok || g.Value() <= 0 {
		t.Error("goroutine gauge not populated after Refresh")
	}
}
