package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/tracing"
)

// defaultTraceLimit bounds /traces responses when no limit is given.
const defaultTraceLimit = 20

// OverviewHandler serves the cached composite snapshot.
func OverviewHandler(a *Aggregator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(a.Overview())
	})
}

// SystemHandler serves fresh process resource usage.
func SystemHandler(a *Aggregator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			Timestamp time.Time  `json:"timestamp"`
			System    SystemInfo `json:"system"`
		}{
			Timestamp: time.Now(),
			System:    a.System(),
		})
	})
}

// spanView is the JSON shape of one finished span.
type spanView struct {
	TraceID      string         `json:"trace_id"`
	SpanID       string         `json:"span_id"`
	ParentSpanID string         `json:"parent_span_id,omitempty"`
	Operation    string         `json:"operation"`
	Service      string         `json:"service"`
	Type         string         `json:"type"`
	Status       string         `json:"status"`
	StartTime    time.Time      `json:"start_time"`
	DurationMS   float64        `json:"duration_ms"`
	Tags         map[string]any `json:"tags,omitempty"`
}

// TracesHandler serves recently finished spans, most recent first.
// The limit query parameter caps the result; it defaults to 20 and
// rejects non-positive or unparseable values.
func TracesHandler(tracer *tracing.Tracer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		limit := defaultTraceLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = n
		}

		spans := tracer.RecentSpans(limit)
		views := make([]spanView, 0, len(spans))
		for _, s := range spans {
			views = append(views, spanView{
				TraceID:      s.TraceID(),
				SpanID:       s.SpanID(),
				ParentSpanID: s.ParentSpanID(),
				Operation:    s.OperationName(),
				Service:      s.ServiceName(),
				Type:         s.SpanType(),
				Status:       string(s.Status()),
				StartTime:    s.StartTime(),
				DurationMS:   float64(s.Duration()) / float64(time.Millisecond),
				Tags:         s.Tags(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			Count  int        `json:"count"`
			Traces []spanView `json:"traces"`
		}{
			Count:  len(views),
			Traces: views,
		})
	})
}
