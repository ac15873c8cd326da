package tracing

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayefimenko/sharklearning-sub001/pkg/config"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/logging"
)

// SpanContext carries the cross-process identity of a span: everything
// needed to continue its trace on the other side of a network hop.
type SpanContext struct {
	TraceID       string
	SpanID        string
	ServiceName   string
	OperationName string
	Baggage       map[string]string
}

// Continuable reports whether the context identifies a span that a
// downstream process can parent on. Both IDs must be present.
func (sc SpanContext) Continuable() bool {
	return sc.TraceID != "" && sc.SpanID != ""
}

// SpanOption customizes span creation.
type SpanOption func(*Span)

// WithSpanType sets the span type (e.g., "http", "database").
func WithSpanType(spanType string) SpanOption {
	return func(s *Span) { s.spanType = spanType }
}

// WithTag attaches a tag at creation time.
func WithTag(key string, value any) SpanOption {
	return func(s *Span) { s.tags[key] = value }
}

// Tracer creates, continues and finishes spans.
//
// Sampling is a per-trace Bernoulli decision: an unsampled trace yields
// no-op spans whose methods are all safe, preserving a uniform interface
// at call sites. Finished sampled spans are fanned out to every
// registered exporter and retained in a capped ring buffer for
// introspection.
type Tracer struct {
	cfg         config.TracingConfig
	serviceName string
	logger      *logging.Logger

	mu        sync.RWMutex
	exporters []Exporter

	ringMu   sync.Mutex
	finished []*Span
	ringIdx  int
}

// noopSpan is the shared span returned for unsampled traces.
var noopSpan = &Span{}

// NewTracer creates a tracer for the named service.
// A nil logger falls back to a no-op logger.
func NewTracer(cfg config.TracingConfig, serviceName string, logger *logging.Logger, exporters ...Exporter) *Tracer {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.MaxFinishedSpans <= 0 {
		cfg.MaxFinishedSpans = config.DefaultMaxFinishedSpans
	}

	return &Tracer{
		cfg:         cfg,
		serviceName: serviceName,
		logger:      logger,
		exporters:   exporters,
	}
}

// RegisterExporter adds an exporter for finished spans.
func (t *Tracer) RegisterExporter(e Exporter) {
	t.mu.Lock()
	t.exporters = append(t.exporters, e)
	t.mu.Unlock()
}

// StartTrace starts a new trace and returns its root span.
func (t *Tracer) StartTrace(operationName string, opts ...SpanOption) *Span {
	if !t.sample() {
		return noopSpan
	}
	return t.startSpan(newTraceID(), "", operationName, map[string]string{}, opts...)
}

// ContinueTrace continues the trace identified by ctx: the new span
// reuses its trace ID, parents on its span ID and restores its baggage.
// A non-continuable context starts a fresh trace instead.
func (t *Tracer) ContinueTrace(ctx SpanContext, operationName string, opts ...SpanOption) *Span {
	if !ctx.Continuable() {
		return t.StartTrace(operationName, opts...)
	}
	if !t.sample() {
		return noopSpan
	}
	return t.startSpan(ctx.TraceID, ctx.SpanID, operationName, copyBaggage(ctx.Baggage), opts...)
}

// startSpan builds a sampled span. baggage is owned by the new span.
func (t *Tracer) startSpan(traceID, parentSpanID, operationName string, baggage map[string]string, opts ...SpanOption) *Span {
	s := &Span{
		tracer:        t,
		traceID:       traceID,
		spanID:        newSpanID(),
		parentSpanID:  parentSpanID,
		operationName: operationName,
		serviceName:   t.serviceName,
		spanType:      "internal",
		startTime:     time.Now(),
		status:        StatusOK,
		tags:          make(map[string]any),
		baggage:       baggage,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// sample makes the Bernoulli sampling decision for a new trace.
func (t *Tracer) sample() bool {
	if !t.cfg.Enabled {
		return false
	}
	return rand.Float64() < t.cfg.SampleRate
}

// recordFinished retains the span in the ring buffer and fans it out to
// every exporter. Exporter failures (errors and panics) are logged per
// exporter and never propagate to the caller or block other exporters.
func (t *Tracer) recordFinished(s *Span) {
	t.ringMu.Lock()
	if len(t.finished) < t.cfg.MaxFinishedSpans {
		t.finished = append(t.finished, s)
	} else {
		t.finished[t.ringIdx] = s
		t.ringIdx = (t.ringIdx + 1) % t.cfg.MaxFinishedSpans
	}
	t.ringMu.Unlock()

	t.mu.RLock()
	exporters := make([]Exporter, len(t.exporters))
	copy(exporters, t.exporters)
	t.mu.RUnlock()

	for _, e := range exporters {
		t.exportOne(e, s)
	}
}

// exportOne runs a single exporter with panic isolation.
func (t *Tracer) exportOne(e Exporter, s *Span) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("span exporter panicked",
				"exporter", e.Name(), "trace_id", s.traceID, "panic", r)
		}
	}()

	if err := e.Export(s); err != nil {
		t.logger.Error("span export failed",
			"exporter", e.Name(), "trace_id", s.traceID, "error", err.Error())
	}
}

// RecentSpans returns up to limit finished spans, most recent first.
// A non-positive limit returns every retained span.
func (t *Tracer) RecentSpans(limit int) []*Span {
	t.ringMu.Lock()
	defer t.ringMu.Unlock()

	n := len(t.finished)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]*Span, 0, limit)
	// Walk backwards from the most recently written slot.
	idx := t.ringIdx - 1
	if len(t.finished) < t.cfg.MaxFinishedSpans {
		idx = n - 1
	} else if idx < 0 {
		idx = n - 1
	}
	for i := 0; i < limit; i++ {
		out = append(out, t.finished[idx])
		idx--
		if idx < 0 {
			idx = n - 1
		}
	}
	return out
}

// FinishedCount returns the number of spans currently retained.
func (t *Tracer) FinishedCount() int {
	t.ringMu.Lock()
	defer t.ringMu.Unlock()
	return len(t.finished)
}

// ServiceName returns the service this tracer reports for.
func (t *Tracer) ServiceName() string { return t.serviceName }

// newTraceID returns a 32-character hex trace ID.
func newTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// newSpanID returns a 16-character hex span ID.
func newSpanID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
