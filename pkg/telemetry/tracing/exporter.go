package tracing

import (
	"sync"

	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/logging"
)

// Exporter receives finished spans. Implementations must tolerate
// concurrent calls. An exporter error is logged by the tracer and never
// reaches the span's caller.
type Exporter interface {
	// Name identifies the exporter in failure logs.
	Name() string

	// Export delivers one finished span. The exporter must not retain
	// or mutate the span beyond the call unless it copies the data.
	Export(span *Span) error
}

// LogExporter writes finished spans to the structured logger. It is the
// default export path when no external collector is configured.
type LogExporter struct {
	logger *logging.Logger
}

// NewLogExporter creates a log exporter.
func NewLogExporter(logger *logging.Logger) *LogExporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogExporter{logger: logger}
}

// Name implements Exporter.
func (e *LogExporter) Name() string { return "log" }

// Export implements Exporter.
func (e *LogExporter) Export(span *Span) error {
	e.logger.Debug("span finished",
		"trace_id", span.TraceID(),
		"span_id", span.SpanID(),
		"parent_span_id", span.ParentSpanID(),
		"operation", span.OperationName(),
		"service", span.ServiceName(),
		"type", span.SpanType(),
		"status", string(span.Status()),
		"duration_ms", float64(span.Duration().Microseconds())/1000,
	)
	return nil
}

// MemoryExporter retains exported spans in memory. Intended for tests
// and local debugging, not production use.
type MemoryExporter struct {
	mu    sync.Mutex
	spans []*Span
}

// NewMemoryExporter creates an in-memory exporter.
func NewMemoryExporter() *MemoryExporter {
	return &MemoryExporter{}
}

// Name implements Exporter.
func (e *MemoryExporter) Name() string { return "memory" }

// Export implements Exporter.
func (e *MemoryExporter) Export(span *Span) error {
	e.mu.Lock()
	e.spans = append(e.spans, span)
	e.mu.Unlock()
	return nil
}

// Spans returns all exported spans in export order.
func (e *MemoryExporter) Spans() []*Span {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp := make([]*Span, len(e.spans))
	copy(cp, e.spans)
	return cp
}

// Reset discards all retained spans.
func (e *MemoryExporter) Reset() {
	e.mu.Lock()
	e.spans = nil
	e.mu.Unlock()
}
