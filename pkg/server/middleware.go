package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/logging"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/metrics"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/tracing"
)

// RequestIDHeader is the HTTP header carrying the request ID.
const RequestIDHeader = "X-Request-ID"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const requestIDKey contextKey = "request_id"

// RequestID extracts the request ID from the context, empty when absent.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// requestIDMiddleware assigns each request a unique ID, honoring one
// the client already set, and reflects it in the response headers.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// recoveryMiddleware turns handler panics into 500 responses. The panic
// and stack are logged with the request ID; clients see no internals.
func recoveryMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic in handler",
						"panic", err,
						"request_id", RequestID(r.Context()),
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()))

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success": false,
						"error": map[string]string{
							"message": "an internal error occurred",
							"code":    "INTERNAL_ERROR",
						},
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware logs one structured line per completed request.
func loggingMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"latency_ms", time.Since(start).Milliseconds(),
				"request_id", RequestID(r.Context()),
				"remote_addr", r.RemoteAddr)
		})
	}
}

// tracingMiddleware continues a trace from the request headers, or
// starts a fresh one, and finishes the span with the response outcome.
func tracingMiddleware(tracer *tracing.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			operation := r.Method + " " + r.URL.Path

			var span *tracing.Span
			if ctx, ok := tracing.ExtractFromHeaders(r.Header); ok {
				span = tracer.ContinueTrace(ctx, operation, tracing.WithSpanType("http"))
			} else {
				span = tracer.StartTrace(operation, tracing.WithSpanType("http"))
			}

			if id := RequestID(r.Context()); id != "" {
				span.SetTag("request.id", id)
			}

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			span.RecordHTTP(r.Method, r.URL.Path, rw.statusCode)
			span.Finish()
		})
	}
}

// metricsMiddleware maintains the request counters and latency
// histogram consumed by the dashboard and the adaptive rate limiter.
type metricsMiddleware struct {
	requests *metrics.Counter
	errors   *metrics.Counter
	duration *metrics.Histogram
}

func newMetricsMiddleware(registry *metrics.Registry) *metricsMiddleware {
	return &metricsMiddleware{
		requests: registry.Counter("http_requests_total", "Total HTTP requests served", nil),
		errors:   registry.Counter("http_request_errors_total", "HTTP requests answered with a 5xx status", nil),
		duration: registry.Histogram("http_request_duration_seconds", "HTTP request latency", nil, nil),
	}
}

func (m *metricsMiddleware) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		m.requests.Add()
		if rw.statusCode >= 500 {
			m.errors.Add()
		}
		m.duration.Observe(time.Since(start).Seconds())
	})
}
