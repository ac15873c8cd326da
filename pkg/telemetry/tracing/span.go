package tracing

import (
	"fmt"
	"sync"
	"time"
)

// SpanStatus is the terminal status of a span.
type SpanStatus string

const (
	// StatusOK marks a span that completed normally.
	StatusOK SpanStatus = "OK"

	// StatusError marks a span that observed an error.
	StatusError SpanStatus = "ERROR"

	// StatusTimeout marks a span whose operation timed out.
	StatusTimeout SpanStatus = "TIMEOUT"

	// StatusCancelled marks a span whose operation was cancelled.
	StatusCancelled SpanStatus = "CANCELLED"
)

// LogEntry is one timestamped log line attached to a span.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Span is one timed unit of work within a trace.
//
// All spans of a trace share a trace ID and form a tree via parent span
// IDs. A span carries tags, ordered logs and baggage; baggage propagates
// to children (as a snapshot taken at child creation, not live-linked)
// and across process boundaries via headers.
//
// Unsampled spans are no-ops: every mutating method returns the receiver
// without recording anything, so callers never branch on whether a span
// is real. A span may be finished at most once; a second Finish is a
// no-op with a logged warning.
//
// Span is safe for concurrent use.
type Span struct {
	tracer *Tracer // nil for no-op spans

	traceID      string
	spanID       string
	parentSpanID string

	operationName string
	serviceName   string
	spanType      string

	mu        sync.Mutex
	startTime time.Time
	endTime   time.Time
	duration  time.Duration
	status    SpanStatus
	tags      map[string]any
	logs      []LogEntry
	baggage   map[string]string
	finished  bool
}

// TraceID returns the trace ID shared by the whole call chain.
func (s *Span) TraceID() string { return s.traceID }

// SpanID returns this span's unique ID.
func (s *Span) SpanID() string { return s.spanID }

// ParentSpanID returns the parent span ID, empty for a root span.
func (s *Span) ParentSpanID() string { return s.parentSpanID }

// OperationName returns the operation this span measures.
func (s *Span) OperationName() string { return s.operationName }

// ServiceName returns the service that produced this span.
func (s *Span) ServiceName() string { return s.serviceName }

// SpanType returns the span type (e.g., "http", "database", "internal").
func (s *Span) SpanType() string { return s.spanType }

// StartTime returns when the span started.
func (s *Span) StartTime() time.Time { return s.startTime }

// Sampled reports whether this span records data.
func (s *Span) Sampled() bool { return s.tracer != nil }

// Finished reports whether Finish has been called.
func (s *Span) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// EndTime returns when the span finished, zero before Finish.
func (s *Span) EndTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endTime
}

// Duration returns the span duration, valid only after Finish.
func (s *Span) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Status returns the span status.
func (s *Span) Status() SpanStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetStatus sets the span status.
func (s *Span) SetStatus(status SpanStatus) *Span {
	if s.tracer == nil {
		return s
	}
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	return s
}

// SetTag attaches a tag to the span.
func (s *Span) SetTag(key string, value any) *Span {
	if s.tracer == nil {
		return s
	}
	s.mu.Lock()
	s.tags[key] = value
	s.mu.Unlock()
	return s
}

// Tag returns the tag stored under key, or nil.
func (s *Span) Tag(key string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags[key]
}

// Tags returns a copy of the span's tags.
func (s *Span) Tags() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make(map[string]any, len(s.tags))
	for k, v := range s.tags {
		cp[k] = v
	}
	return cp
}

// SetBaggage attaches a baggage item. Baggage propagates to children
// created after this call and across process boundaries via headers.
func (s *Span) SetBaggage(key, value string) *Span {
	if s.tracer == nil {
		return s
	}
	s.mu.Lock()
	s.baggage[key] = value
	s.mu.Unlock()
	return s
}

// BaggageItem returns the baggage value for key, empty when absent.
func (s *Span) BaggageItem(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baggage[key]
}

// Baggage returns a copy of the span's baggage.
func (s *Span) Baggage() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyBaggage(s.baggage)
}

// Log appends a timestamped log entry to the span.
func (s *Span) Log(level, message string, fields map[string]any) *Span {
	if s.tracer == nil {
		return s
	}
	s.mu.Lock()
	s.logs = append(s.logs, LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    fields,
	})
	s.mu.Unlock()
	return s
}

// Logs returns a copy of the span's log entries, in append order.
func (s *Span) Logs() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]LogEntry, len(s.logs))
	copy(cp, s.logs)
	return cp
}

// RecordError marks the span as failed: status becomes ERROR, error
// details are attached as tags and a log entry is appended.
func (s *Span) RecordError(err error) *Span {
	if s.tracer == nil || err == nil {
		return s
	}

	s.mu.Lock()
	s.status = StatusError
	s.tags["error"] = true
	s.tags["error.message"] = err.Error()
	s.tags["error.type"] = fmt.Sprintf("%T", err)
	s.logs = append(s.logs, LogEntry{
		Timestamp: time.Now(),
		Level:     "error",
		Message:   err.Error(),
	})
	s.mu.Unlock()
	return s
}

// RecordHTTP attaches structured HTTP tags to the span. A status code
// of 500 or above also marks the span as failed.
func (s *Span) RecordHTTP(method, path string, statusCode int) *Span {
	if s.tracer == nil {
		return s
	}

	s.mu.Lock()
	s.tags["http.method"] = method
	s.tags["http.path"] = path
	s.tags["http.status_code"] = statusCode
	if statusCode >= 500 {
		s.status = StatusError
		s.tags["error"] = true
	}
	s.mu.Unlock()
	return s
}

// RecordDatabase attaches structured database tags to the span. The
// statement is sanitized before storage: credential literals are masked
// and the text is truncated, so secrets never reach trace exports.
func (s *Span) RecordDatabase(system, statement string) *Span {
	if s.tracer == nil {
		return s
	}

	s.mu.Lock()
	s.tags["db.system"] = system
	s.tags["db.statement"] = SanitizeStatement(statement)
	s.mu.Unlock()
	return s
}

// Child creates a child span inheriting this span's trace ID and a
// snapshot of its current baggage.
func (s *Span) Child(operationName string, opts ...SpanOption) *Span {
	if s.tracer == nil {
		return s
	}
	return s.tracer.startSpan(s.traceID, s.spanID, operationName, s.Baggage(), opts...)
}

// Finish completes the span: end time and duration are computed and the
// span is handed to every registered exporter. Finish is idempotent; a
// second call changes nothing and logs a warning.
func (s *Span) Finish() {
	if s.tracer == nil {
		return
	}

	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		s.tracer.logger.Warn("span finished twice",
			"trace_id", s.traceID, "span_id", s.spanID, "operation", s.operationName)
		return
	}
	s.finished = true
	s.endTime = time.Now()
	s.duration = s.endTime.Sub(s.startTime)
	s.mu.Unlock()

	s.tracer.recordFinished(s)
}

// Context returns the propagation context of this span. For no-op spans
// the context is empty and not continuable.
func (s *Span) Context() SpanContext {
	if s.tracer == nil {
		return SpanContext{}
	}
	return SpanContext{
		TraceID:       s.traceID,
		SpanID:        s.spanID,
		ServiceName:   s.serviceName,
		OperationName: s.operationName,
		Baggage:       s.Baggage(),
	}
}

// copyBaggage returns a defensive copy of a baggage map.
func copyBaggage(baggage map[string]string) map[string]string {
	cp := make(map[string]string, len(baggage))
	for k, v := range baggage {
		cp[k] = v
	}
	return cp
}
